package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaCmd outputs JSON Schema for cfdbg output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (event,stack,variables,source,breakpoints,session_start,session_end,session_debug,trigger,error). Default: all"`
}

var schemaTypes = []string{
	"event", "stack", "variables", "source", "breakpoints",
	"session_start", "session_end", "session_debug", "trigger", "error",
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	if globals.Format == "text" && len(c.Type) == 0 {
		c.outputTextHelp(globals)
		return nil
	}

	schemas := map[string]interface{}{
		"event":         eventSchema(),
		"stack":         stackSchema(),
		"variables":     variablesSchema(),
		"source":        sourceSchema(),
		"breakpoints":   breakpointsSchema(),
		"session_start": sessionStartSchema(),
		"session_end":   sessionEndSchema(),
		"session_debug": sessionDebugSchema(),
		"trigger":       triggerSchema(),
		"error":         errorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}

	// Build output
	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "cfdbg Output Schemas",
		"description": "JSON Schema definitions for all cfdbg NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := output["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	// Output as JSON
	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func typeConst(name string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "string",
		"const": name,
	}
}

func schemaVersionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Output schema version",
	}
}

func sessionIDProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session id assigned when the handshake began",
	}
}

func eventSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Event",
		"description": "A pause or the end of the debug session",
		"properties": map[string]interface{}{
			"type":          typeConst("event"),
			"schemaVersion": schemaVersionProp(),
			"session_id":    sessionIDProp(),
			"event": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"stopOnPause", "stopOnBreakpoint", "stopOnStep", "end"},
				"description": "Event kind",
			},
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "When the event was written",
			},
		},
		"required": []string{"type", "session_id", "event"},
	}
}

func frameSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Position among valid frames, zero based",
			},
			"name":          map[string]interface{}{"type": "string"},
			"source_uri":    map[string]interface{}{"type": "string"},
			"source_number": map[string]interface{}{"type": "integer"},
			"line":          map[string]interface{}{"type": "integer"},
			"column":        map[string]interface{}{"type": "integer"},
		},
		"required": []string{"index", "name", "source_uri", "source_number", "line", "column"},
	}
}

func stackSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Stack Trace",
		"description": "A page of the paused program's call stack",
		"properties": map[string]interface{}{
			"type":          typeConst("stack"),
			"schemaVersion": schemaVersionProp(),
			"start": map[string]interface{}{
				"type":        "integer",
				"description": "Requested first frame",
			},
			"frames": map[string]interface{}{
				"type":  "array",
				"items": frameSchema(),
			},
		},
		"required": []string{"type", "frames"},
	}
}

func variablesSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Variables",
		"description": "Top level stack variables (index 0) or the children of one variable",
		"properties": map[string]interface{}{
			"type":          typeConst("variables"),
			"schemaVersion": schemaVersionProp(),
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Requested variable index",
			},
			"variables": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":  map[string]interface{}{"type": "string"},
						"type":  map[string]interface{}{"type": "string"},
						"value": map[string]interface{}{"type": "string"},
						"index": map[string]interface{}{
							"type":        "integer",
							"description": "Pass to vars to expand this node",
						},
						"children": map[string]interface{}{
							"type":        []string{"array", "null"},
							"description": "Nested variables with the same shape",
						},
					},
					"required": []string{"name", "type", "value", "index"},
				},
			},
		},
		"required": []string{"type", "index", "variables"},
	}
}

func sourceSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Source",
		"description": "Text of a source file",
		"properties": map[string]interface{}{
			"type":          typeConst("source"),
			"schemaVersion": schemaVersionProp(),
			"uri":           map[string]interface{}{"type": "string"},
			"content":       map[string]interface{}{"type": "string"},
		},
		"required": []string{"type", "uri", "content"},
	}
}

func breakpointsSchema() map[string]interface{} {
	lines := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "integer"},
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Breakpoints",
		"description": "Lines accepted for one source path",
		"properties": map[string]interface{}{
			"type":          typeConst("breakpoints"),
			"schemaVersion": schemaVersionProp(),
			"path":          map[string]interface{}{"type": "string"},
			"requested":     lines,
			"accepted":      lines,
		},
		"required": []string{"type", "path", "accepted"},
	}
}

func sessionStartSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Start",
		"description": "Emitted when attach begins a handshake",
		"properties": map[string]interface{}{
			"type":          typeConst("session_start"),
			"schemaVersion": schemaVersionProp(),
			"session_id":    sessionIDProp(),
			"url":           map[string]interface{}{"type": "string"},
			"poll_interval_ms": map[string]interface{}{
				"type":        "integer",
				"description": "Execution poll interval in milliseconds",
			},
			"breakpoints": map[string]interface{}{
				"type":        "integer",
				"description": "Paths registered before the handshake",
			},
			"timestamp": map[string]interface{}{
				"type":   "string",
				"format": "date-time",
			},
		},
		"required": []string{"type", "session_id", "url"},
	}
}

func sessionEndSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session End",
		"description": "Summary written when the session ends",
		"properties": map[string]interface{}{
			"type":          typeConst("session_end"),
			"schemaVersion": schemaVersionProp(),
			"session_id":    sessionIDProp(),
			"summary": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pauses":           map[string]interface{}{"type": "integer"},
					"breakpoints":      map[string]interface{}{"type": "integer"},
					"steps":            map[string]interface{}{"type": "integer"},
					"duration_seconds": map[string]interface{}{"type": "integer"},
				},
			},
		},
		"required": []string{"type", "session_id", "summary"},
	}
}

func sessionDebugSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Debug",
		"description": "State transition, written with --verbose",
		"properties": map[string]interface{}{
			"type":          typeConst("session_debug"),
			"schemaVersion": schemaVersionProp(),
			"session_id":    sessionIDProp(),
			"from":          map[string]interface{}{"type": "string"},
			"to":            map[string]interface{}{"type": "string"},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Input that caused the transition (e.g., probe_failed, timeout, stop)",
			},
		},
		"required": []string{"type", "from", "to", "reason"},
	}
}

func triggerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Trigger",
		"description": "A trigger command started for an event",
		"properties": map[string]interface{}{
			"type":          typeConst("trigger"),
			"schemaVersion": schemaVersionProp(),
			"trigger": map[string]interface{}{
				"type": "string",
				"enum": []string{"breakpoint", "step", "pause", "end"},
			},
			"command":    map[string]interface{}{"type": "string"},
			"session_id": sessionIDProp(),
		},
		"required": []string{"type", "trigger", "command"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Error message from cfdbg",
		"properties": map[string]interface{}{
			"type": typeConst("error"),
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Error code (e.g., SERVER_UNREACHABLE, INVALID_BREAKPOINT)",
				"enum":        errorCodes,
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error description",
			},
			"hint": map[string]interface{}{
				"type":        "string",
				"description": "Suggested fix",
			},
		},
		"required": []string{"type", "code", "message"},
	}
}

// Helper to output a quick reference
func (c *SchemaCmd) outputTextHelp(globals *Globals) {
	fmt.Fprintln(globals.Stdout, "cfdbg Output Types:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "  event         - Pause or end of the session")
	fmt.Fprintln(globals.Stdout, "  stack         - Page of call stack frames")
	fmt.Fprintln(globals.Stdout, "  variables     - Stack variables or children of one")
	fmt.Fprintln(globals.Stdout, "  source        - Source file content")
	fmt.Fprintln(globals.Stdout, "  breakpoints   - Accepted breakpoint lines")
	fmt.Fprintln(globals.Stdout, "  session_start - Handshake started")
	fmt.Fprintln(globals.Stdout, "  session_end   - Session summary")
	fmt.Fprintln(globals.Stdout, "  session_debug - State transition (--verbose)")
	fmt.Fprintln(globals.Stdout, "  trigger       - Trigger command started")
	fmt.Fprintln(globals.Stdout, "  error         - Error from cfdbg")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Use --type to filter: cfdbg schema --type event,error")
}
