// Package guard enforces at most one plan execution at a time and a hard
// wall-clock deadline on each one.
//
// A Guard moves IDLE → RUNNING → {COMPLETED, ABORTED}. Aborting closes the
// channel returned by Done, so waits inside an execution wake within one
// tick. The Watchdog polls the guard independently of the execution and
// forces an abort plus an actuator stop once the deadline passes.
package guard

import (
	"sync"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
)

// State is the lifecycle state of the current or last execution.
type State int

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Aborted:
		return "ABORTED"
	default:
		return "IDLE"
	}
}

// Aborter is what an execution polls to find out it must stop.
type Aborter interface {
	// IsAborted reports whether the execution must stop now.
	IsAborted() bool

	// Done is closed when an abort is raised.
	Done() <-chan struct{}
}

// Guard owns the execution session. All fields are behind mu.
type Guard struct {
	clk clock.Clock

	mu       sync.Mutex
	state    State
	deadline time.Time
	aborted  bool
	expired  bool
	done     chan struct{}
}

// New creates an idle Guard.
func New(clk clock.Clock) *Guard {
	return &Guard{clk: clk, done: make(chan struct{})}
}

// Begin starts an execution that must finish within maxDuration. It returns
// false without touching the session when one is already running.
func (g *Guard) Begin(maxDuration time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Running {
		return false
	}
	g.state = Running
	g.deadline = g.clk.Now().Add(maxDuration)
	g.aborted = false
	g.expired = false
	g.done = make(chan struct{})
	return true
}

// IsAborted reports whether an abort was raised or the deadline has passed.
func (g *Guard) IsAborted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.aborted {
		return true
	}
	return g.state == Running && !g.clk.Now().Before(g.deadline)
}

// Done returns a channel closed when the running execution is aborted.
func (g *Guard) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Abort raises the abort flag on a running execution. It returns false when
// nothing is running or an abort is already raised.
func (g *Guard) Abort() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Running || g.aborted {
		return false
	}
	g.raiseLocked()
	return true
}

func (g *Guard) raiseLocked() {
	g.aborted = true
	close(g.done)
}

// expire raises the abort once the deadline of a running execution passes.
// It reports true only on the call that performed the expiry.
func (g *Guard) expire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Running || g.expired || g.clk.Now().Before(g.deadline) {
		return false
	}
	g.expired = true
	if !g.aborted {
		g.raiseLocked()
	}
	return true
}

// End finishes the running execution and returns its final state. Calling
// End with nothing running returns the last state unchanged.
func (g *Guard) End() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Running {
		return g.state
	}
	if g.aborted || !g.clk.Now().Before(g.deadline) {
		g.state = Aborted
	} else {
		g.state = Completed
	}
	return g.state
}

// State returns the current lifecycle state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Running reports whether an execution is in progress.
func (g *Guard) Running() bool {
	return g.State() == Running
}

// Deadline returns the deadline of the current or last execution.
func (g *Guard) Deadline() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deadline
}

// Wait holds for d in slices of at most slice, returning false as soon as a
// is aborted. Worst-case abort latency is one slice.
func Wait(clk clock.Clock, a Aborter, d, slice time.Duration) bool {
	for remaining := d; remaining > 0; {
		if a.IsAborted() {
			return false
		}
		step := min(slice, remaining)
		select {
		case <-a.Done():
			return false
		case <-clk.After(step):
		}
		remaining -= step
	}
	return !a.IsAborted()
}
