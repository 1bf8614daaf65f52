// internal/sched/level.go

package sched

import (
	"fmt"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// Level is one priority tier: a policy and three disjoint process queues.
type Level struct {
	policy   Policy
	pending  *redblacktree.Tree     // not yet arrived, ordered by arrivalKey
	ready    *doublylinkedlist.List // front runs next
	finished *doublylinkedlist.List // in completion order
	seq      uint64                 // insertion counter for stable arrival ties
}

// NewLevel creates an empty level.
func NewLevel(p Policy) *Level {
	return &Level{
		policy:   p,
		pending:  redblacktree.NewWith(cmpArrival),
		ready:    doublylinkedlist.New(),
		finished: doublylinkedlist.New(),
	}
}

// NewLevels creates one level per policy, index 0 being the highest priority.
func NewLevels(policies ...Policy) []*Level {
	levels := make([]*Level, len(policies))
	for i, p := range policies {
		levels[i] = NewLevel(p)
	}
	return levels
}

func (l *Level) Policy() Policy { return l.policy }

// reset empties all three queues.
func (l *Level) reset() {
	l.pending.Clear()
	l.ready.Clear()
	l.finished.Clear()
	l.seq = 0
}

// addPending inserts p among the not-yet-arrived processes. Equal arrival
// times keep insertion order.
func (l *Level) addPending(p *Process) {
	l.pending.Put(arrivalKey{arrival: p.ArrivalTime, seq: l.seq}, p)
	l.seq++
}

// nextPending returns the earliest pending process without removing it.
func (l *Level) nextPending() (*Process, bool) {
	node := l.pending.Left()
	if node == nil {
		return nil, false
	}
	return node.Value.(*Process), true
}

func (l *Level) popPending() *Process {
	node := l.pending.Left()
	if node == nil {
		return nil
	}
	l.pending.Remove(node.Key)
	return node.Value.(*Process)
}

// enqueue places p in the ready queue using order, or at the tail when
// order is nil.
func (l *Level) enqueue(p *Process, order Ordering) {
	if order == nil {
		l.ready.Add(p)
		return
	}
	it := l.ready.Iterator()
	for it.Next() {
		if order(p, it.Value().(*Process)) {
			l.ready.Insert(it.Index(), p)
			return
		}
	}
	l.ready.Add(p)
}

func (l *Level) popReady() *Process {
	v, ok := l.ready.Get(0)
	if !ok {
		return nil
	}
	l.ready.Remove(0)
	return v.(*Process)
}

func (l *Level) finish(p *Process) { l.finished.Add(p) }

// Pending lists the processes that have not arrived yet, by arrival.
func (l *Level) Pending() []*Process { return processes(l.pending.Values()) }

// Ready lists the ready queue, front first.
func (l *Level) Ready() []*Process { return processes(l.ready.Values()) }

// Finished lists finished processes in completion order.
func (l *Level) Finished() []*Process { return processes(l.finished.Values()) }

func (l *Level) String() string {
	return fmt.Sprintf("%s ready (%d) arrival (%d) finished (%d)",
		l.policy, l.ready.Size(), l.pending.Size(), l.finished.Size())
}

func processes(values []interface{}) []*Process {
	out := make([]*Process, len(values))
	for i, v := range values {
		out[i] = v.(*Process)
	}
	return out
}

// arrivalKey is used as a key in the pending tree.
type arrivalKey struct {
	arrival int
	seq     uint64
}

// cmpArrival implements the Comparator interface for the pending tree.
func cmpArrival(a, b any) int {
	ka, kb := a.(arrivalKey), b.(arrivalKey)
	switch {
	case ka.arrival < kb.arrival:
		return -1
	case ka.arrival > kb.arrival:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

// Prepare empties every level and distributes the restarted processes into
// their levels' pending queues. It fails before touching anything if a
// process names a level that does not exist.
func Prepare(procs []*Process, levels []*Level) error {
	for _, p := range procs {
		if p.Level < 0 || p.Level >= len(levels) {
			return fmt.Errorf("%w: process %s uses level %d, %d defined",
				ErrInvalidLevelIndex, p.Name, p.Level+1, len(levels))
		}
	}
	for _, l := range levels {
		l.reset()
	}
	for _, p := range procs {
		p.Restart()
		levels[p.Level].addPending(p)
	}
	return nil
}
