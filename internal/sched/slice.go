package sched

import (
	"fmt"
	"strings"
)

// SliceKind tells whether a slice was spent on the CPU or waiting for it.
type SliceKind int

const (
	SliceCPU SliceKind = iota
	SliceWait
)

func (k SliceKind) String() string {
	if k == SliceWait {
		return "WAIT"
	}
	return "CPU"
}

// Slice is the half-open interval [From, To).
type Slice struct {
	Kind SliceKind
	From int
	To   int
}

func (s Slice) Duration() int { return s.To - s.From }

func (s Slice) String() string {
	return fmt.Sprintf("%s %d -> %d", s.Kind, s.From, s.To)
}

// TraceEntry is one CPU grant.
type TraceEntry struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// Trace is the ordered list of CPU grants of a run, one entry per slice.
type Trace []TraceEntry

// Merged coalesces consecutive grants to the same process.
func (t Trace) Merged() Trace {
	out := make(Trace, 0, len(t))
	for _, e := range t {
		if n := len(out); n > 0 && out[n-1].Name == e.Name {
			out[n-1].Duration += e.Duration
			continue
		}
		out = append(out, e)
	}
	return out
}

// Total is the CPU time granted over the whole trace.
func (t Trace) Total() int {
	total := 0
	for _, e := range t {
		total += e.Duration
	}
	return total
}

func (t Trace) String() string {
	var b strings.Builder
	for i, e := range t {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s (%d)", e.Name, e.Duration)
	}
	return b.String()
}
