package session

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// Tracker counts the events of one session for its end summary
type Tracker struct {
	mu           sync.Mutex
	clock        clock.Clock
	sessionID    string
	sessionStart time.Time
	pauses       int
	breakpoints  int
	steps        int
	ended        bool
}

// NewTracker creates a tracker for sessionID starting now
func NewTracker(sessionID string, clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{
		clock:        clk,
		sessionID:    sessionID,
		sessionStart: clk.Now(),
	}
}

// CheckEvent records an event and returns the session summary when the event
// ends the session. Events after the first end are ignored.
func (t *Tracker) CheckEvent(ev domain.Event) *domain.SessionEnd {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ended {
		return nil
	}

	switch ev.Kind {
	case domain.EventStopOnPause:
		t.pauses++
	case domain.EventStopOnBreakpoint:
		t.breakpoints++
	case domain.EventStopOnStep:
		t.steps++
	case domain.EventEnd:
		t.ended = true
		return domain.NewSessionEnd(t.sessionID, t.summary())
	}
	return nil
}

// Reset starts counting for a new session generation
func (t *Tracker) Reset(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = sessionID
	t.sessionStart = t.clock.Now()
	t.pauses, t.breakpoints, t.steps = 0, 0, 0
	t.ended = false
}

// GetFinalSummary returns a summary for the current session (for stream end)
func (t *Tracker) GetFinalSummary() *domain.SessionEnd {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.NewSessionEnd(t.sessionID, t.summary())
}

// Stats returns current session statistics
func (t *Tracker) Stats() (pauses, breakpoints, steps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pauses, t.breakpoints, t.steps
}

func (t *Tracker) summary() domain.SessionSummary {
	return domain.SessionSummary{
		Pauses:          t.pauses,
		Breakpoints:     t.breakpoints,
		Steps:           t.steps,
		DurationSeconds: int(t.clock.Since(t.sessionStart).Seconds()),
	}
}
