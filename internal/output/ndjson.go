package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// SchemaVersion is stamped on every NDJSON record
const SchemaVersion = 1

// NDJSONWriter writes one JSON object per line. It is safe for concurrent use.
type NDJSONWriter struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewNDJSONWriter creates a writer on w
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{encoder: json.NewEncoder(w)}
}

// EventOutput is a session lifecycle event
type EventOutput struct {
	Type          string `json:"type"` // "event"
	SchemaVersion int    `json:"schemaVersion"`
	SessionID     string `json:"session_id"`
	Event         string `json:"event"`
	Timestamp     string `json:"timestamp"`
}

// StackOutput is one page of the call stack
type StackOutput struct {
	Type          string              `json:"type"` // "stack"
	SchemaVersion int                 `json:"schemaVersion"`
	Start         int                 `json:"start"`
	Frames        []domain.StackFrame `json:"frames"`
}

// VariablesOutput is one page of the variable forest, or the children of a node
type VariablesOutput struct {
	Type          string                `json:"type"` // "variables"
	SchemaVersion int                   `json:"schemaVersion"`
	Index         int                   `json:"index"`
	Variables     []domain.VariableNode `json:"variables"`
}

// SourceOutput is the text of a source file
type SourceOutput struct {
	Type          string `json:"type"` // "source"
	SchemaVersion int    `json:"schemaVersion"`
	URI           string `json:"uri"`
	Content       string `json:"content"`
}

// BreakpointsOutput reports which requested lines the server accepted
type BreakpointsOutput struct {
	Type          string `json:"type"` // "breakpoints"
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
	Requested     []int  `json:"requested"`
	Accepted      []int  `json:"accepted"`
}

// MessageOutput is an info or warning line
type MessageOutput struct {
	Type          string `json:"type"` // "info" or "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// TriggerOutput is emitted when an event trigger command is started
type TriggerOutput struct {
	Type          string `json:"type"` // "trigger"
	SchemaVersion int    `json:"schemaVersion"`
	Trigger       string `json:"trigger"`
	Command       string `json:"command"`
	SessionID     string `json:"session_id"`
}

// TriggerErrorOutput is emitted when a trigger command fails
type TriggerErrorOutput struct {
	Type          string `json:"type"` // "trigger_error"
	SchemaVersion int    `json:"schemaVersion"`
	Command       string `json:"command"`
	Error         string `json:"error"`
}

// ErrorOutput is a coded failure
type ErrorOutput struct {
	Type          string `json:"type"` // "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// Write encodes any value as one line
func (w *NDJSONWriter) Write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encoder.Encode(v)
}

// WriteEvent writes a lifecycle event of session sessionID
func (w *NDJSONWriter) WriteEvent(sessionID string, ev domain.Event) error {
	return w.Write(&EventOutput{
		Type:          "event",
		SchemaVersion: SchemaVersion,
		SessionID:     sessionID,
		Event:         string(ev.Kind),
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// WriteFrames writes a page of frames starting at frame start
func (w *NDJSONWriter) WriteFrames(start int, frames []domain.StackFrame) error {
	if frames == nil {
		frames = []domain.StackFrame{}
	}
	return w.Write(&StackOutput{
		Type:          "stack",
		SchemaVersion: SchemaVersion,
		Start:         start,
		Frames:        frames,
	})
}

// WriteVariables writes the variables returned for index
func (w *NDJSONWriter) WriteVariables(index int, vars []domain.VariableNode) error {
	if vars == nil {
		vars = []domain.VariableNode{}
	}
	return w.Write(&VariablesOutput{
		Type:          "variables",
		SchemaVersion: SchemaVersion,
		Index:         index,
		Variables:     vars,
	})
}

// WriteSource writes the content of uri
func (w *NDJSONWriter) WriteSource(uri, content string) error {
	return w.Write(&SourceOutput{
		Type:          "source",
		SchemaVersion: SchemaVersion,
		URI:           uri,
		Content:       content,
	})
}

// WriteBreakpoints writes the outcome of a breakpoint request
func (w *NDJSONWriter) WriteBreakpoints(path string, requested, accepted []int) error {
	if accepted == nil {
		accepted = []int{}
	}
	return w.Write(&BreakpointsOutput{
		Type:          "breakpoints",
		SchemaVersion: SchemaVersion,
		Path:          path,
		Requested:     requested,
		Accepted:      accepted,
	})
}

// WriteSessionStart writes a session_start record
func (w *NDJSONWriter) WriteSessionStart(s *domain.SessionStart) error {
	return w.Write(s)
}

// WriteSessionEnd writes a session_end record
func (w *NDJSONWriter) WriteSessionEnd(s *domain.SessionEnd) error {
	return w.Write(s)
}

// WriteSessionDebug writes a session_debug record
func (w *NDJSONWriter) WriteSessionDebug(s *domain.SessionDebug) error {
	return w.Write(s)
}

// WriteInfo writes an informational message
func (w *NDJSONWriter) WriteInfo(message string) error {
	return w.Write(&MessageOutput{Type: "info", SchemaVersion: SchemaVersion, Message: message})
}

// WriteWarning writes a non fatal problem
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.Write(&MessageOutput{Type: "warning", SchemaVersion: SchemaVersion, Message: message})
}

// WriteTrigger records that a trigger command was started
func (w *NDJSONWriter) WriteTrigger(trigger, command, sessionID string) error {
	return w.Write(&TriggerOutput{
		Type:          "trigger",
		SchemaVersion: SchemaVersion,
		Trigger:       trigger,
		Command:       command,
		SessionID:     sessionID,
	})
}

// WriteTriggerError records a failed trigger command
func (w *NDJSONWriter) WriteTriggerError(command string, err error) error {
	return w.Write(&TriggerErrorOutput{
		Type:          "trigger_error",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Error:         err.Error(),
	})
}

// WriteError writes a coded error with an optional hint
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := &ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.Write(out)
}
