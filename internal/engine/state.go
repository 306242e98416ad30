package engine

// State is the engine's re-entrancy state.
type State uint8

const (
	// Idle accepts mutating calls.
	Idle State = iota
	// LayingOut rejects mutating calls with ErrLocked.
	LayingOut
)

// String returns the name of the state.
func (s State) String() string {
	if s == Idle {
		return "idle"
	}
	return "laying out"
}

// State returns the current lock state.
func (e *Engine) State() State {
	return e.state
}

// IsLocked reports whether mutating calls are currently rejected.
func (e *Engine) IsLocked() bool {
	return e.state != Idle
}

// enter switches to LayingOut and returns the function restoring the
// previous state. Use as: defer e.enter()()
func (e *Engine) enter() func() {
	prev := e.state
	e.state = LayingOut
	return func() {
		e.state = prev
	}
}
