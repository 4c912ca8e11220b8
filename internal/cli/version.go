package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/vburojevic/cfdbg/internal/output"
)

// VersionCmd prints build information
type VersionCmd struct{}

type versionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	GoVersion     string `json:"go_version"`
}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(versionOutput{
			Type:          "version",
			SchemaVersion: output.SchemaVersion,
			Version:       Version,
			Commit:        Commit,
			GoVersion:     runtime.Version(),
		})
	}
	_, err := fmt.Fprintf(globals.Stdout, "cfdbg version %s (%s) %s\n", Version, Commit, runtime.Version())
	return err
}
