package cli

import (
	"fmt"

	"github.com/vburojevic/cfdbg/internal/output"
)

// Error codes carried by error records
const (
	codeInvalidFlags      = "INVALID_FLAGS"
	codeInvalidCooldown   = "INVALID_COOLDOWN"
	codeInvalidBreakpoint = "INVALID_BREAKPOINT"
	codeInvalidWhere      = "INVALID_WHERE"
	codeServerUnreachable = "SERVER_UNREACHABLE"
	codeNoResult          = "NO_RESULT"
)

// errorCodes is every code, in the order the schema lists them
var errorCodes = []string{
	codeInvalidFlags,
	codeInvalidCooldown,
	codeInvalidBreakpoint,
	codeInvalidWhere,
	codeServerUnreachable,
	codeNoResult,
}

// noResultHint explains the usual NO_RESULT cause: the accessors only have
// data while the debugged program is stopped
const noResultHint = "stack, vars and source only answer while the program is paused; run attach and wait for a stop event"

// CodedError is what a command returns after its error record was written.
type CodedError struct {
	Code    string
	Message string
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// reportError writes a coded error record and returns it as a *CodedError.
// NDJSON keeps the record on stdout in the same stream as session records so
// a consumer of attach sees why it stopped; text goes to stderr.
func reportError(globals *Globals, code, message string, hint ...string) error {
	h := ""
	if len(hint) > 0 {
		h = hint[0]
	}
	switch {
	case globals == nil:
	case globals.Format == "ndjson":
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, h)
	default:
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s", code, message)
		if h != "" {
			fmt.Fprintf(globals.Stderr, " (hint: %s)", h)
		}
		fmt.Fprintln(globals.Stderr)
	}
	return &CodedError{Code: code, Message: message}
}

// serverHint names the debug server cfdbg tried to reach and where to change it
func serverHint(globals *Globals) string {
	url := ""
	if globals != nil {
		url = globals.URL
	}
	return fmt.Sprintf("is the debug server listening on %s? set --url, CFDBG_URL or server.url", url)
}
