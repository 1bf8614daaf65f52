// internal/sched/event.go

package sched

// EventKind represents the type of engine event
type EventKind int

const (
	EventIdle EventKind = iota
	EventArrive
	EventDispatch
	EventPreempt
	EventRequeue
	EventFinish
)

// Event is emitted on every state change of the engine.
type Event struct {
	Clock     int
	Kind      EventKind
	Process   string // empty for idle jumps
	PID       int
	Level     int
	Remaining int
	Ran       int // CPU granted by the slice that caused the event
}

func (k EventKind) String() string {
	switch k {
	case EventIdle:
		return "Idle"
	case EventArrive:
		return "Arrive"
	case EventDispatch:
		return "Dispatch"
	case EventPreempt:
		return "Preempt"
	case EventRequeue:
		return "Requeue"
	case EventFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// EventSink consumes engine events synchronously, in emission order.
type EventSink interface {
	Handle(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) Handle(ev Event) { f(ev) }

// Recorder keeps every event in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Handle(ev Event) { r.Events = append(r.Events, ev) }

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Kind
	}
	return out
}
