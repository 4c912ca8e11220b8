package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// TextWriter renders records for humans. Frames and variables are tables.
type TextWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextWriter creates a writer on w
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteEvent prints an event line
func (t *TextWriter) WriteEvent(sessionID string, ev domain.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "%s [%s] session %s\n",
		time.Now().Format("15:04:05.000"), describeEvent(ev.Kind), shortID(sessionID))
	return err
}

// WriteFrames prints a frame table. Frame indexes are already absolute.
func (t *TextWriter) WriteFrames(_ int, frames []domain.StackFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(frames) == 0 {
		_, err := fmt.Fprintln(t.w, "No frames")
		return err
	}

	table := tablewriter.NewWriter(t.w)
	table.Header("#", "Function", "Location")
	for _, f := range frames {
		if err := table.Append([]string{strconv.Itoa(f.Index), f.Name, f.Location()}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteVariables prints a variable table. Nodes with children show the
// index to expand them with.
func (t *TextWriter) WriteVariables(index int, vars []domain.VariableNode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(vars) == 0 {
		_, err := fmt.Fprintln(t.w, "No variables")
		return err
	}

	table := tablewriter.NewWriter(t.w)
	table.Header("Name", "Type", "Value", "Expand")
	for _, v := range vars {
		expand := ""
		if v.HasChildren() {
			expand = fmt.Sprintf("vars %d (%d)", v.Index, len(v.Children))
		}
		if err := table.Append([]string{v.Name, v.Type, v.Value, expand}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteSource prints content with line numbers
func (t *TextWriter) WriteSource(uri, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "==> %s <==\n", uri)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 1
	for scanner.Scan() {
		fmt.Fprintf(t.w, "%5d  %s\n", line, scanner.Text())
		line++
	}
	return scanner.Err()
}

// WriteBreakpoints prints the accepted lines of a breakpoint request
func (t *TextWriter) WriteBreakpoints(path string, requested, accepted []int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "Breakpoints %s: %d of %d accepted %s\n",
		path, len(accepted), len(requested), joinInts(accepted))
	return err
}

// WriteSessionStart prints the session header
func (t *TextWriter) WriteSessionStart(s *domain.SessionStart) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "=== Session %s: %s (poll %dms, %d breakpoint paths) ===\n",
		shortID(s.SessionID), s.URL, s.PollIntervalMs, s.Breakpoints)
	return err
}

// WriteSessionEnd prints the session summary
func (t *TextWriter) WriteSessionEnd(s *domain.SessionEnd) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "=== Session %s ended: %d breakpoints, %d steps, %d pauses in %ds ===\n",
		shortID(s.SessionID), s.Summary.Breakpoints, s.Summary.Steps, s.Summary.Pauses, s.Summary.DurationSeconds)
	return err
}

// WriteSessionDebug prints a state transition
func (t *TextWriter) WriteSessionDebug(s *domain.SessionDebug) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "[debug] %s -> %s (%s)\n", s.From, s.To, s.Reason)
	return err
}

// WriteInfo prints a message
func (t *TextWriter) WriteInfo(message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, message)
	return err
}

// WriteWarning prints a warning
func (t *TextWriter) WriteWarning(message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "Warning: %s\n", message)
	return err
}

// WriteTrigger prints a trigger notice
func (t *TextWriter) WriteTrigger(trigger, command, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "[TRIGGER:%s] Running: %s\n", trigger, command)
	return err
}

// WriteTriggerError prints a failed trigger
func (t *TextWriter) WriteTriggerError(command string, err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, werr := fmt.Fprintf(t.w, "[TRIGGER ERROR] %s: %s\n", command, err)
	return werr
}

func describeEvent(kind domain.EventKind) string {
	switch kind {
	case domain.EventStopOnBreakpoint:
		return "BREAKPOINT"
	case domain.EventStopOnStep:
		return "STEP"
	case domain.EventStopOnPause:
		return "PAUSED"
	case domain.EventEnd:
		return "END"
	}
	return strings.ToUpper(string(kind))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinInts(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
