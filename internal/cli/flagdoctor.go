package cli

import (
	"fmt"
	"time"
)

// validateFlags centralizes common flag combinations to keep behavior consistent.
// Zero durations skip their checks.
func validateFlags(globals *Globals, pollInterval, handshakeTimeout time.Duration) error {
	// quiet + text hides every line a human would read; steer to ndjson
	if globals != nil && globals.Format == "text" && globals.Quiet {
		return reportError(globals, codeInvalidFlags, "--quiet is only supported with ndjson output", "switch to --format ndjson or drop --quiet")
	}
	if globals != nil && globals.RequestTimeout < 0 {
		return reportError(globals, codeInvalidFlags, fmt.Sprintf("--timeout must not be negative, got %s", globals.RequestTimeout))
	}
	if pollInterval < 0 {
		return reportError(globals, codeInvalidFlags, fmt.Sprintf("--poll-interval must be positive, got %s", pollInterval), "use a duration such as 500ms")
	}
	if handshakeTimeout < 0 {
		return reportError(globals, codeInvalidFlags, fmt.Sprintf("--handshake-timeout must be positive, got %s", handshakeTimeout), "use a duration such as 5s")
	}
	return nil
}
