package domain

import "time"

// SessionStart is emitted when attach begins a handshake with the server
type SessionStart struct {
	Type           string `json:"type"`             // "session_start"
	SchemaVersion  int    `json:"schemaVersion"`    // 1
	SessionID      string `json:"session_id"`       // Generation id assigned by Start
	URL            string `json:"url"`              // Debug server base URL
	PollIntervalMs int64  `json:"poll_interval_ms"` // Execution poll interval
	Breakpoints    int    `json:"breakpoints"`      // Paths registered before the handshake
	Timestamp      string `json:"timestamp"`        // ISO8601 timestamp
}

// SessionEnd is emitted when the session delivers its end event
type SessionEnd struct {
	Type          string         `json:"type"`          // "session_end"
	SchemaVersion int            `json:"schemaVersion"` // 1
	SessionID     string         `json:"session_id"`    // Session that ended
	Summary       SessionSummary `json:"summary"`       // Summary of the session
}

// SessionSummary contains statistics about a completed session
type SessionSummary struct {
	Pauses          int `json:"pauses"`
	Breakpoints     int `json:"breakpoints"`
	Steps           int `json:"steps"`
	DurationSeconds int `json:"duration_seconds"`
}

// NewSessionStart creates a new SessionStart record
func NewSessionStart(sessionID, url string, pollInterval time.Duration, breakpoints int) *SessionStart {
	return &SessionStart{
		Type:           "session_start",
		SchemaVersion:  1,
		SessionID:      sessionID,
		URL:            url,
		PollIntervalMs: pollInterval.Milliseconds(),
		Breakpoints:    breakpoints,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// NewSessionEnd creates a new SessionEnd record
func NewSessionEnd(sessionID string, summary SessionSummary) *SessionEnd {
	return &SessionEnd{
		Type:          "session_end",
		SchemaVersion: 1,
		SessionID:     sessionID,
		Summary:       summary,
	}
}
