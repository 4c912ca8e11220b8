package output

import (
	"io"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// Writer is implemented by NDJSONWriter and TextWriter
type Writer interface {
	WriteEvent(sessionID string, ev domain.Event) error
	WriteFrames(start int, frames []domain.StackFrame) error
	WriteVariables(index int, vars []domain.VariableNode) error
	WriteSource(uri, content string) error
	WriteBreakpoints(path string, requested, accepted []int) error
	WriteSessionStart(s *domain.SessionStart) error
	WriteSessionEnd(s *domain.SessionEnd) error
	WriteSessionDebug(s *domain.SessionDebug) error
	WriteInfo(message string) error
	WriteWarning(message string) error
	WriteTrigger(trigger, command, sessionID string) error
	WriteTriggerError(command string, err error) error
}

// New returns the writer for format, falling back to NDJSON
func New(format string, w io.Writer) Writer {
	if format == "text" {
		return NewTextWriter(w)
	}
	return NewNDJSONWriter(w)
}
