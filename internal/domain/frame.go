package domain

import "fmt"

// StackFrame is a frame of the paused program's call stack
type StackFrame struct {
	Index        int    `json:"index"` // Position in the validated result, zero-based
	Name         string `json:"name"`
	SourceURI    string `json:"source_uri"`
	SourceNumber int    `json:"source_number"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
}

// Location returns "uri:line:column"
func (f StackFrame) Location() string {
	return fmt.Sprintf("%s:%d:%d", f.SourceURI, f.Line, f.Column)
}
