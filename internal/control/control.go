package control

import "sync/atomic"

type State int32

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "idle"
}

// Control is the submit guard for a single form control. Only one submission
// may be in flight; extra triggers while submitting are dropped.
type Control struct {
	state atomic.Int32
}

// Begin moves idle to submitting. It reports false when a submission is
// already running.
func (c *Control) Begin() bool {
	return c.state.CompareAndSwap(int32(Idle), int32(Submitting))
}

// End returns the control to idle.
func (c *Control) End() {
	c.state.Store(int32(Idle))
}

func (c *Control) State() State {
	return State(c.state.Load())
}

// Do runs fn under the guard. ran is false when fn was skipped.
func (c *Control) Do(fn func() error) (ran bool, err error) {
	if !c.Begin() {
		return false, nil
	}
	defer c.End()
	return true, fn()
}
