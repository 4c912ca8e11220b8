package session

// State is the lifecycle state of a session.
type State int32

const (
	// StateUninitialized is the state before the first Start.
	StateUninitialized State = iota
	// StateHandshaking is while status probes are retried until one succeeds.
	StateHandshaking
	// StateLive is after the first successful probe.
	StateLive
	// StateEnded is after Stop, a handshake timeout, or connection loss.
	StateEnded
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHandshaking:
		return "handshaking"
	case StateLive:
		return "live"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Started reports whether breakpoint requests go straight to the server.
// An ended session counts as started so late requests are not buffered
// forever.
func (s State) Started() bool {
	return s == StateLive || s == StateEnded
}

// Input is something that happened to a session.
type Input int

const (
	InputStart Input = iota
	InputProbeSucceeded
	InputProbeFailed
	InputTimeout
	InputStop
)

// String returns the name used in logs and session_debug records.
func (i Input) String() string {
	switch i {
	case InputStart:
		return "start"
	case InputProbeSucceeded:
		return "probe_succeeded"
	case InputProbeFailed:
		return "probe_failed"
	case InputTimeout:
		return "timeout"
	case InputStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Action is the side effect the controller performs after a transition.
type Action int

const (
	ActionNone Action = iota
	// ActionBeginHandshake starts a new generation: timeout guard and first probe.
	ActionBeginHandshake
	// ActionProbe retries the status probe immediately.
	ActionProbe
	// ActionGoLive flushes deferred breakpoints and continues execution.
	ActionGoLive
	// ActionContinue continues execution.
	ActionContinue
	// ActionEnd cancels polling and emits the end event.
	ActionEnd
)

// Transition is the session state machine. It has no side effects.
func Transition(s State, in Input) (State, Action) {
	switch in {
	case InputStart:
		if s == StateUninitialized || s == StateEnded {
			return StateHandshaking, ActionBeginHandshake
		}
		return s, ActionNone

	case InputProbeSucceeded:
		switch s {
		case StateHandshaking:
			return StateLive, ActionGoLive
		case StateLive:
			return StateLive, ActionContinue
		}
		return s, ActionNone

	case InputProbeFailed:
		switch s {
		case StateHandshaking:
			return StateHandshaking, ActionProbe
		case StateLive:
			// Connection lost after the handshake
			return StateEnded, ActionEnd
		}
		return s, ActionNone

	case InputTimeout:
		if s == StateHandshaking {
			return StateEnded, ActionEnd
		}
		return s, ActionNone

	case InputStop:
		return StateEnded, ActionEnd
	}
	return s, ActionNone
}
