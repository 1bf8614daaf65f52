// internal/sched/engine.go

package sched

import (
	"github.com/sirupsen/logrus"
)

// Engine simulates a single CPU shared by processes spread over priority
// levels. It is single threaded and owns the processes and levels for the
// duration of a run.
type Engine struct {
	processes []*Process
	levels    []*Level
	clock     *SimClock
	sink      EventSink

	running      *Process // nil when the CPU is free
	runningLevel int      // level index of running
	quantumUsed  int      // CPU granted to running since it was dispatched

	trace Trace
	done  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSinks sends every engine event to the given sinks, in order.
func WithSinks(sinks ...EventSink) Option {
	return func(e *Engine) {
		if len(sinks) == 1 {
			e.sink = sinks[0]
			return
		}
		e.sink = multiSink(sinks)
	}
}

// NewEngine creates an engine over procs and levels. Process.Level must
// index into levels; Prepare checks it.
func NewEngine(procs []*Process, levels []*Level, opts ...Option) *Engine {
	e := &Engine{
		processes: procs,
		levels:    levels,
		clock:     NewSimClock(),
		sink:      EventSinkFunc(func(Event) {}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare resets the clock, the levels and every process so the engine can
// run from time 0. A process collection may be prepared and run any number
// of times.
func (e *Engine) Prepare() error {
	if err := Prepare(e.processes, e.levels); err != nil {
		return err
	}
	e.clock = NewSimClock()
	e.running = nil
	e.runningLevel = 0
	e.quantumUsed = 0
	e.trace = nil
	e.done = false

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		for i, l := range e.levels {
			logrus.Tracef("prepared level %d: %s pending=%v", i+1, l.Policy(), l.Pending())
		}
	}
	return nil
}

// Run prepares the engine, steps it until no work is left and returns the
// result.
func (e *Engine) Run() (*Result, error) {
	if err := e.Prepare(); err != nil {
		return nil, err
	}
	for e.Step() {
	}
	return e.result(), nil
}

// Step performs one iteration of the scheduling loop: admit arrivals,
// dispatch if the CPU is free, then either run one slice or jump the clock
// to the next arrival. It returns false once there is nothing left to do.
func (e *Engine) Step() bool {
	if e.done {
		return false
	}

	e.admitArrivals()

	if e.running == nil {
		e.dispatch()
	}

	if e.running == nil {
		next, ok := e.nextArrival()
		if !ok {
			e.done = true
			return false
		}
		e.emit(Event{Clock: e.clock.Now(), Kind: EventIdle, Level: -1})
		e.clock.JumpTo(next)
		return true
	}

	e.execute()
	return true
}

// Clock returns the current simulated time.
func (e *Engine) Clock() int { return e.clock.Now() }

// Running returns the process holding the CPU, or nil.
func (e *Engine) Running() *Process { return e.running }

// Trace returns the CPU grants so far.
func (e *Engine) Trace() Trace { return e.trace }

// Levels returns the engine's levels.
func (e *Engine) Levels() []*Level { return e.levels }

// admitArrivals moves every process whose arrival time has come from its
// level's pending queue to the ready queue and returns how many moved.
func (e *Engine) admitArrivals() int {
	now := e.clock.Now()
	total := 0
	for i, l := range e.levels {
		for {
			p, ok := l.nextPending()
			if !ok || p.ArrivalTime > now {
				break
			}
			l.popPending()

			p.State = StateReady
			p.WaitingTime = now - p.ArrivalTime
			p.addSlice(SliceWait, p.ArrivalTime, now)
			l.enqueue(p, l.policy.arrivalOrdering())
			total++

			e.emit(Event{Clock: now, Kind: EventArrive, Process: p.Name, PID: p.PID, Level: i, Remaining: p.RemainingTime})
		}
	}
	return total
}

// dispatch gives the CPU to the front of the highest priority non-empty
// ready queue.
func (e *Engine) dispatch() {
	for i, l := range e.levels {
		p := l.popReady()
		if p == nil {
			continue
		}
		p.State = StateRunning
		e.running = p
		e.runningLevel = i
		e.quantumUsed = 0
		e.emit(Event{Clock: e.clock.Now(), Kind: EventDispatch, Process: p.Name, PID: p.PID, Level: i, Remaining: p.RemainingTime})
		return
	}
}

// nextArrival is the earliest arrival time still pending on any level.
func (e *Engine) nextArrival() (int, bool) {
	next, found := 0, false
	for _, l := range e.levels {
		p, ok := l.nextPending()
		if !ok {
			continue
		}
		if !found || p.ArrivalTime < next {
			next, found = p.ArrivalTime, true
		}
	}
	return next, found
}

// sliceLength is how long the running process keeps the CPU before the
// engine has to look again: until it finishes, its quantum runs out or the
// next process arrives, whichever comes first.
func (e *Engine) sliceLength() int {
	now := e.clock.Now()
	policy := e.levels[e.runningLevel].policy

	slice := e.running.RemainingTime
	if policy.preemptsOnQuantum() {
		slice = min(slice, policy.quantum-e.quantumUsed)
	}
	if next, ok := e.nextArrival(); ok && next < now+slice {
		slice = next - now
	}
	if slice <= 0 {
		slice = 1
	}
	return slice
}

// execute runs the current process for one slice and decides what happens
// to it afterwards.
func (e *Engine) execute() {
	p := e.running
	level := e.levels[e.runningLevel]
	now := e.clock.Now()
	slice := e.sliceLength()

	p.RemainingTime -= slice
	p.CPUTime += slice
	e.quantumUsed += slice
	p.addSlice(SliceCPU, now, now+slice)

	// Every ready process waits, whatever its level.
	for _, other := range e.processes {
		if other != p && other.State == StateReady {
			other.WaitingTime += slice
			other.addSlice(SliceWait, now, now+slice)
		}
	}

	e.trace = append(e.trace, TraceEntry{Name: p.Name, Duration: slice})
	e.clock.Advance(slice)
	now = e.clock.Now()

	ev := Event{Clock: now, Process: p.Name, PID: p.PID, Level: e.runningLevel, Remaining: p.RemainingTime, Ran: slice}
	switch {
	case p.RemainingTime <= 0:
		p.State = StateFinished
		p.FinishedTime = now
		level.finish(p)
		e.running = nil
		ev.Kind = EventFinish
	case level.policy.preemptsOnQuantum() && e.quantumUsed >= level.policy.quantum:
		p.State = StateReady
		level.enqueue(p, nil)
		e.running = nil
		ev.Kind = EventPreempt
	case level.policy.strategy == SRT:
		// Back into the ready queue so a shorter arrival can take over.
		p.State = StateReady
		level.enqueue(p, level.policy.requeueOrdering())
		e.running = nil
		ev.Kind = EventRequeue
	default:
		return
	}
	e.emit(ev)
}

func (e *Engine) emit(ev Event) { e.sink.Handle(ev) }

// result settles waiting times from the slice logs and collects the run.
func (e *Engine) result() *Result {
	r := &Result{
		Processes: e.processes,
		Levels:    e.levels,
		Trace:     e.trace,
	}
	for _, p := range e.processes {
		waited := p.SliceTotal(SliceWait)
		if p.WaitingTime >= 0 && p.WaitingTime != waited {
			logrus.Warnf("process %s: accrued waiting time %d differs from slice total %d", p.Name, p.WaitingTime, waited)
		}
		p.WaitingTime = waited
		r.TotalWaiting += waited
		if p.FinishedTime > r.EndTime {
			r.EndTime = p.FinishedTime
		}
	}
	return r
}

// Result is the outcome of one run. Processes and Levels are the engine's
// own objects and must be treated as read-only.
type Result struct {
	Processes    []*Process
	Levels       []*Level
	Trace        Trace
	EndTime      int // latest finished time, 0 when nothing ran
	TotalWaiting int
}

// AverageWaiting is the mean waiting time, 0 for an empty run.
func (r *Result) AverageWaiting() float64 {
	if len(r.Processes) == 0 {
		return 0
	}
	return float64(r.TotalWaiting) / float64(len(r.Processes))
}

// AverageTurnaround is the mean of finished minus arrival, 0 for an empty run.
func (r *Result) AverageTurnaround() float64 {
	if len(r.Processes) == 0 {
		return 0
	}
	total := 0
	for _, p := range r.Processes {
		if t := p.TurnaroundTime(); t > 0 {
			total += t
		}
	}
	return float64(total) / float64(len(r.Processes))
}

// Simulate builds a fresh engine over procs and levels and runs it.
func Simulate(procs []*Process, levels []*Level, opts ...Option) (*Result, error) {
	return NewEngine(procs, levels, opts...).Run()
}
