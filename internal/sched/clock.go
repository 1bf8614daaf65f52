// internal/sched/clock.go

package sched

import "fmt"

// SimClock is the discrete simulation clock. It only moves forward and
// counts how many times it moved.
type SimClock struct {
	now   int
	moves int64
}

// NewSimClock creates a clock at time 0.
func NewSimClock() *SimClock {
	return &SimClock{}
}

// Now returns the current simulated time.
func (c *SimClock) Now() int { return c.now }

// Advance moves the clock forward by d units. d must be positive.
func (c *SimClock) Advance(d int) {
	if d <= 0 {
		panic(fmt.Sprintf("sched: clock advance by %d at %d", d, c.now))
	}
	c.now += d
	c.moves++
}

// JumpTo moves the clock to t, which must lie in the future.
func (c *SimClock) JumpTo(t int) {
	if t <= c.now {
		panic(fmt.Sprintf("sched: clock jump from %d to %d", c.now, t))
	}
	c.now = t
	c.moves++
}

// Moves returns how many times the clock has moved.
func (c *SimClock) Moves() int64 { return c.moves }
