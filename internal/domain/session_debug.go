package domain

// SessionDebug is an optional verbose record describing lifecycle transitions.
type SessionDebug struct {
	Type          string `json:"type"` // session_debug
	SchemaVersion int    `json:"schemaVersion"`
	SessionID     string `json:"session_id,omitempty"`
	From          string `json:"from"`
	To            string `json:"to"`
	Reason        string `json:"reason"` // e.g., probe_failed, timeout, stop
}
