package domain

// EventKind names a lifecycle notification raised by a session
type EventKind string

const (
	EventStopOnPause      EventKind = "stopOnPause"
	EventStopOnBreakpoint EventKind = "stopOnBreakpoint"
	EventStopOnStep       EventKind = "stopOnStep"
	EventEnd              EventKind = "end"
)

// Event is delivered to the host on the session's event channel.
// It carries nothing beyond its kind.
type Event struct {
	Kind EventKind
}

// IsStop reports whether the event announces a paused program
func (e Event) IsStop() bool {
	return e.Kind == EventStopOnPause || e.Kind == EventStopOnBreakpoint || e.Kind == EventStopOnStep
}
