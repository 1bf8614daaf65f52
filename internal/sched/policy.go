// internal/sched/policy.go

package sched

import (
	"fmt"
	"strings"
)

// Strategy selects how a level orders and preempts its ready processes.
type Strategy int

const (
	FIFO Strategy = iota
	SJF
	RR
	SRT
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case SJF:
		return "SJF"
	case RR:
		return "RR"
	case SRT:
		return "SRT"
	default:
		return "UNKNOWN"
	}
}

// ParseStrategy accepts fifo, sjf, rr and srt in any case.
func ParseStrategy(token string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "fifo":
		return FIFO, nil
	case "sjf":
		return SJF, nil
	case "rr":
		return RR, nil
	case "srt":
		return SRT, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, token)
}

// Policy is a strategy plus its quantum. Only round robin carries a
// quantum; the constructors for the other strategies cannot set one.
type Policy struct {
	strategy Strategy
	quantum  int
}

func FIFOPolicy() Policy { return Policy{strategy: FIFO} }
func SJFPolicy() Policy  { return Policy{strategy: SJF} }
func SRTPolicy() Policy  { return Policy{strategy: SRT} }

// RoundRobin returns an RR policy. A quantum of 0 (or less) never
// preempts, so the process keeps the CPU until it finishes.
func RoundRobin(quantum int) Policy {
	if quantum < 0 {
		quantum = 0
	}
	return Policy{strategy: RR, quantum: quantum}
}

// NewPolicy builds a policy from a strategy and a quantum that is
// dropped for anything but RR.
func NewPolicy(s Strategy, quantum int) (Policy, error) {
	switch s {
	case FIFO:
		return FIFOPolicy(), nil
	case SJF:
		return SJFPolicy(), nil
	case SRT:
		return SRTPolicy(), nil
	case RR:
		if quantum < 0 {
			return Policy{}, fmt.Errorf("%w: quantum %d must not be negative", ErrConfiguration, quantum)
		}
		return RoundRobin(quantum), nil
	}
	return Policy{}, fmt.Errorf("%w: unknown strategy %d", ErrConfiguration, int(s))
}

func (p Policy) Strategy() Strategy { return p.strategy }
func (p Policy) Quantum() int       { return p.quantum }

// preemptsOnQuantum reports whether the policy takes the CPU away after a
// fixed amount of service.
func (p Policy) preemptsOnQuantum() bool { return p.strategy == RR && p.quantum > 0 }

func (p Policy) String() string {
	return fmt.Sprintf("%s q=%d", p.strategy, p.quantum)
}

// Ordering reports whether incoming must be placed ahead of queued.
// Insertion walks the queue from the front and stops at the first queued
// process that incoming goes ahead of, so equal keys keep insertion order.
type Ordering func(incoming, queued *Process) bool

// ByArrival orders by arrival time.
func ByArrival(incoming, queued *Process) bool {
	return incoming.ArrivalTime < queued.ArrivalTime
}

// ByRemaining orders by remaining time.
func ByRemaining(incoming, queued *Process) bool {
	return incoming.RemainingTime < queued.RemainingTime
}

// ByRemainingRanFirst orders by remaining time, except that a queued
// process that already had the CPU is never overtaken.
func ByRemainingRanFirst(incoming, queued *Process) bool {
	if queued.CPUTime > 0 {
		return false
	}
	return incoming.RemainingTime < queued.RemainingTime
}

// arrivalOrdering is used when a process moves from pending to ready.
// nil means append.
func (p Policy) arrivalOrdering() Ordering {
	switch p.strategy {
	case SJF:
		return ByRemainingRanFirst
	case SRT:
		return ByRemaining
	default:
		return nil
	}
}

// requeueOrdering is used when a preempted process goes back to ready.
// nil means append.
func (p Policy) requeueOrdering() Ordering {
	if p.strategy == SRT {
		return ByRemaining
	}
	return nil
}
