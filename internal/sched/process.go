// internal/sched/process.go

package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput rejects a process descriptor with a negative arrival
	// time or a non-positive execution time.
	ErrInvalidInput = errors.New("invalid process")

	// ErrInvalidLevelIndex rejects a process bound to a level that does not exist.
	ErrInvalidLevelIndex = errors.New("invalid priority level")

	// ErrConfiguration rejects level definitions (unknown strategy, no levels).
	ErrConfiguration = errors.New("invalid configuration")
)

// State is the lifecycle state of a simulated process.
type State int

const (
	StateUndefined State = iota
	StateLoaded
	StateReady
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Process is one simulated process. Identity and static attributes are set
// at creation; everything else is owned by the Engine during a run.
type Process struct {
	PID           int
	Name          string
	ArrivalTime   int
	ExecutionTime int
	Level         int // index into the level array, 0 is the highest priority

	RemainingTime int
	CPUTime       int     // cumulative CPU granted
	WaitingTime   int     // -1 until the process first becomes ready
	FinishedTime  int     // -1 until finished
	State         State
	Slices        []Slice // CPU and WAIT intervals, ordered by time
}

// NewProcess validates the descriptor and returns a process in the Loaded state.
func NewProcess(name string, arrivalTime, executionTime int) (*Process, error) {
	if arrivalTime < 0 {
		return nil, fmt.Errorf("%w: %s: arrival time %d must not be negative", ErrInvalidInput, name, arrivalTime)
	}
	if executionTime <= 0 {
		return nil, fmt.Errorf("%w: %s: execution time %d must be greater than zero", ErrInvalidInput, name, executionTime)
	}

	p := &Process{
		Name:          name,
		ArrivalTime:   arrivalTime,
		ExecutionTime: executionTime,
	}
	p.Restart()
	return p, nil
}

// Restart puts the process back in its pre-run state, keeping pid, name,
// arrival, execution time and level. Calling it twice is harmless.
func (p *Process) Restart() {
	p.RemainingTime = p.ExecutionTime
	p.CPUTime = 0
	p.WaitingTime = -1
	p.FinishedTime = -1
	p.State = StateLoaded
	p.Slices = nil
}

// TurnaroundTime is finished minus arrival, or -1 while unfinished.
func (p *Process) TurnaroundTime() int {
	if p.FinishedTime < 0 {
		return -1
	}
	return p.FinishedTime - p.ArrivalTime
}

// SliceTotal sums the durations of the slices of the given kind.
func (p *Process) SliceTotal(kind SliceKind) int {
	total := 0
	for _, s := range p.Slices {
		if s.Kind == kind {
			total += s.Duration()
		}
	}
	return total
}

func (p *Process) String() string {
	return fmt.Sprintf("(%s arrival:%d execution:%d finished:%d waiting:%d %s)",
		p.Name, p.ArrivalTime, p.ExecutionTime, p.FinishedTime, p.WaitingTime, p.State)
}

// addSlice appends [from,to) to the log. Empty intervals are dropped.
func (p *Process) addSlice(kind SliceKind, from, to int) {
	if to <= from {
		return
	}
	p.Slices = append(p.Slices, Slice{Kind: kind, From: from, To: to})
}
