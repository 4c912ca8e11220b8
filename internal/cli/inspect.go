package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/filter"
	"github.com/vburojevic/cfdbg/internal/output"
	"github.com/vburojevic/cfdbg/internal/session"
)

// errNoResult means the server answered with nothing usable
var errNoResult = errors.New("no result")

// StackCmd prints a page of the call stack
type StackCmd struct {
	Start int `default:"0" help:"First frame to print"`
	Count int `short:"n" default:"20" help:"Number of frames to print"`
}

// Run executes the stack command
func (c *StackCmd) Run(globals *Globals) error {
	if err := validateFlags(globals, 0, 0); err != nil {
		return err
	}
	frames, err := oneShot(globals, func(ctl *session.Controller, done func([]domain.StackFrame)) {
		ctl.StackTrace(c.Start, c.Count, done)
	})
	if err != nil {
		return requestError(globals, "stack trace", err)
	}
	return output.New(globals.Format, globals.Stdout).WriteFrames(c.Start, frames)
}

// VarsCmd prints stack variables. A positive index prints the children of
// that node instead of the top level.
type VarsCmd struct {
	Index int      `arg:"" optional:"" default:"0" help:"Variable index to expand (0 for top level)"`
	Start int      `default:"0" help:"First top level variable to print"`
	Count int      `short:"n" default:"100" help:"Number of top level variables to print"`
	Where []string `short:"w" sep:"none" help:"Field filter like name~^tmp or children>=1. Repeatable, ANDed"`
}

// Run executes the vars command
func (c *VarsCmd) Run(globals *Globals) error {
	if err := validateFlags(globals, 0, 0); err != nil {
		return err
	}
	where, err := filter.NewWhereFilter(c.Where)
	if err != nil {
		return reportError(globals, codeInvalidWhere, err.Error(), "use field op value, e.g. name~^count")
	}

	vars, err := oneShot(globals, func(ctl *session.Controller, done func([]domain.VariableNode)) {
		if c.Index <= domain.RootVariableIndex {
			ctl.Variables(domain.RootVariableIndex, c.Start, c.Count, done)
			return
		}
		// A fresh controller has no cache, so load the forest before expanding
		ctl.Variables(domain.RootVariableIndex, 0, 0, func([]domain.VariableNode) {
			ctl.Variables(c.Index, 0, 0, done)
		})
	})
	if err != nil {
		return requestError(globals, "variables", err)
	}
	return output.New(globals.Format, globals.Stdout).WriteVariables(c.Index, where.Apply(vars))
}

// SourceCmd prints the content of a source file
type SourceCmd struct {
	URI string `arg:"" help:"Source URI as reported in stack frames"`
}

// Run executes the source command
func (c *SourceCmd) Run(globals *Globals) error {
	if err := validateFlags(globals, 0, 0); err != nil {
		return err
	}
	content, err := oneShot(globals, func(ctl *session.Controller, done func(string)) {
		ctl.Source(c.URI, done)
	})
	if err != nil {
		return requestError(globals, "source "+c.URI, err)
	}
	return output.New(globals.Format, globals.Stdout).WriteSource(c.URI, content)
}

// oneShot runs a single accessor against the configured server without a
// handshake and waits for its callback or the first transport failure.
func oneShot[T any](globals *Globals, call func(ctl *session.Controller, done func(T))) (T, error) {
	var zero T
	results := make(chan T, 1)
	failures := make(chan error, 1)

	logger := newDebugLogger(globals, nil)
	defer logger.Sync()

	ctl := session.NewController(globals.shim(),
		session.WithURL(globals.URL),
		session.WithLogger(logger.Zap()),
		session.WithFailureHook(func(path string, err error) {
			select {
			case failures <- fmt.Errorf("%s: %w", path, err):
			default:
			}
		}),
	)
	defer ctl.Close()

	call(ctl, func(v T) {
		select {
		case results <- v:
		default:
		}
	})

	select {
	case v := <-results:
		return v, nil
	case err := <-failures:
		return zero, err
	case <-time.After(oneShotWait(globals)):
		return zero, errNoResult
	}
}

// oneShotWait bounds how long a one shot command waits; the transport
// timeout normally fires first
func oneShotWait(globals *Globals) time.Duration {
	if globals.RequestTimeout > 0 {
		return globals.RequestTimeout + time.Second
	}
	return 30 * time.Second
}

func requestError(globals *Globals, what string, err error) error {
	if errors.Is(err, errNoResult) {
		return reportError(globals, codeNoResult, fmt.Sprintf("%s: server returned no usable data", what), noResultHint)
	}
	return reportError(globals, codeServerUnreachable, fmt.Sprintf("%s failed: %s", what, err), serverHint(globals))
}
