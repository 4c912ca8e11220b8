package domain

// ExecutionState is the execution status reported by the debug server
type ExecutionState string

const (
	ExecutionRunning          ExecutionState = "Running"
	ExecutionExternalPaused   ExecutionState = "ExternalPaused"
	ExecutionBreakpointPaused ExecutionState = "BreakpointPaused"
	ExecutionStepPaused       ExecutionState = "StepPaused"
	ExecutionEnded            ExecutionState = "Ended"
	ExecutionUnknown          ExecutionState = ""
)

// ParseExecutionState converts the server's execution string, returning
// ExecutionUnknown for anything it does not recognize
func ParseExecutionState(s string) ExecutionState {
	switch ExecutionState(s) {
	case ExecutionRunning, ExecutionExternalPaused, ExecutionBreakpointPaused,
		ExecutionStepPaused, ExecutionEnded:
		return ExecutionState(s)
	default:
		return ExecutionUnknown
	}
}

// IsPaused reports whether the program is stopped in any of the paused states
func (s ExecutionState) IsPaused() bool {
	switch s {
	case ExecutionExternalPaused, ExecutionBreakpointPaused, ExecutionStepPaused:
		return true
	}
	return false
}

// CommandEvent maps a direct command response to the event it raises.
// Running, Ended and unknown values raise nothing.
func (s ExecutionState) CommandEvent() (EventKind, bool) {
	switch s {
	case ExecutionExternalPaused:
		return EventStopOnPause, true
	case ExecutionBreakpointPaused:
		return EventStopOnBreakpoint, true
	case ExecutionStepPaused:
		return EventStopOnStep, true
	}
	return "", false
}

// PollEvent maps a poll response to the event it raises. Unlike CommandEvent,
// an external pause is only ever observed through a direct command.
func (s ExecutionState) PollEvent() (EventKind, bool) {
	switch s {
	case ExecutionBreakpointPaused:
		return EventStopOnBreakpoint, true
	case ExecutionStepPaused:
		return EventStopOnStep, true
	}
	return "", false
}
