package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/cfdbg/internal/output"
)

// UpdateCmd shows how to upgrade cfdbg and check it against the debug server
type UpdateCmd struct{}

// UpdateOutput is the NDJSON record of the update command
type UpdateOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"current_version"`
	Commit        string `json:"commit"`
	GoInstall     string `json:"go_install"`
	ReleasesURL   string `json:"releases_url"`
	ServerURL     string `json:"server_url"`
	ServerCheck   string `json:"server_check"`
}

const (
	goInstallCmd = "go install github.com/vburojevic/cfdbg/cmd/cfdbg@latest"
	releasesURL  = "https://github.com/vburojevic/cfdbg/releases"
)

// serverCheck is a command that exercises the debug server routes a new
// release depends on without starting a session
func serverCheck(url string) string {
	return fmt.Sprintf("cfdbg --url %s stack -n 1", url)
}

// Run executes the update command
func (c *UpdateCmd) Run(globals *Globals) error {
	out := UpdateOutput{
		Type:          "update",
		SchemaVersion: output.SchemaVersion,
		Version:       Version,
		Commit:        Commit,
		GoInstall:     goInstallCmd,
		ReleasesURL:   releasesURL,
		ServerURL:     globals.URL,
		ServerCheck:   serverCheck(globals.URL),
	}
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	fmt.Fprintf(globals.Stdout, "cfdbg %s (%s)\n\n", out.Version, out.Commit)
	fmt.Fprintf(globals.Stdout, "Upgrade:\n  %s\n\n", out.GoInstall)
	fmt.Fprintf(globals.Stdout, "Release notes, including debug server route changes:\n  %s\n\n", out.ReleasesURL)
	fmt.Fprintf(globals.Stdout, "After upgrading, check the server at %s answers:\n  %s\n", out.ServerURL, out.ServerCheck)
	fmt.Fprintln(globals.Stdout, "(run it while the program is paused; NO_RESULT means the server is up but running)")
	return nil
}
