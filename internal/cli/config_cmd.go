package cli

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/vburojevic/cfdbg/internal/config"
	"github.com/vburojevic/cfdbg/internal/output"
)

// ConfigCmd groups configuration subcommands
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show the effective configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show which config file is used"`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file"`
}

// ConfigShowCmd prints the loaded configuration
type ConfigShowCmd struct{}

type configOutput struct {
	Type          string        `json:"type"`
	SchemaVersion int           `json:"schemaVersion"`
	File          string        `json:"file,omitempty"`
	Format        string        `json:"format"`
	Quiet         bool          `json:"quiet"`
	Verbose       bool          `json:"verbose"`
	Server        serverOutput  `json:"server"`
	Session       sessionOutput `json:"session"`
	Problems      []string      `json:"problems,omitempty"`
}

type serverOutput struct {
	URL            string `json:"url"`
	PollInterval   string `json:"poll_interval"`
	RequestTimeout string `json:"request_timeout"`
}

type sessionOutput struct {
	HandshakeTimeout string   `json:"handshake_timeout"`
	Breakpoints      []string `json:"breakpoints"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	var problems []string
	if err := cfg.Validate(); err != nil {
		problems = validationProblems(err)
	}

	if globals.Format == "ndjson" {
		breakpoints := cfg.Session.Breakpoints
		if breakpoints == nil {
			breakpoints = []string{}
		}
		return json.NewEncoder(globals.Stdout).Encode(configOutput{
			Type:          "config",
			SchemaVersion: output.SchemaVersion,
			File:          config.ConfigFile(),
			Format:        cfg.Format,
			Quiet:         cfg.Quiet,
			Verbose:       cfg.Verbose,
			Server: serverOutput{
				URL:            cfg.Server.URL,
				PollInterval:   cfg.Server.PollInterval.String(),
				RequestTimeout: cfg.Server.RequestTimeout.String(),
			},
			Session: sessionOutput{
				HandshakeTimeout: cfg.Session.HandshakeTimeout.String(),
				Breakpoints:      breakpoints,
			},
			Problems: problems,
		})
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format: %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  quiet: %t\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %t\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "Server:")
	fmt.Fprintf(globals.Stdout, "  url: %s\n", cfg.Server.URL)
	fmt.Fprintf(globals.Stdout, "  poll_interval: %s\n", cfg.Server.PollInterval)
	fmt.Fprintf(globals.Stdout, "  request_timeout: %s\n", cfg.Server.RequestTimeout)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "Session:")
	fmt.Fprintf(globals.Stdout, "  handshake_timeout: %s\n", cfg.Session.HandshakeTimeout)
	for _, bp := range cfg.Session.Breakpoints {
		fmt.Fprintf(globals.Stdout, "  breakpoint: %s\n", bp)
	}
	for _, p := range problems {
		fmt.Fprintf(globals.Stdout, "\nProblem: %s\n", p)
	}
	return nil
}

// ConfigPathCmd prints the config file in use
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "Create one with: cfdbg config generate > .cfdbg.yaml")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample config file
type ConfigGenerateCmd struct{}

const sampleConfig = `# cfdbg configuration file
# Place as .cfdbg.yaml in the current directory or your home directory,
# or under ~/.config/cfdbg/ or /etc/cfdbg/

# Output format: ndjson or text
format: ndjson

# Suppress informational output
quiet: false

# Debug logging to stderr
verbose: false

server:
  # Debug server base URL (env: CFDBG_URL)
  url: http://localhost:4747
  # How often execution state is polled while running (env: CFDBG_POLL_INTERVAL)
  poll_interval: 1s
  # Per request timeout
  request_timeout: 10s

session:
  # How long attach waits for the server to answer
  handshake_timeout: 5s
  # Breakpoints registered on every attach, as path:line,line
  breakpoints: []
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleConfig)
	return err
}

// validationProblems flattens a multierr from Config.Validate
func validationProblems(err error) []string {
	return lo.Map(multierr.Errors(err), func(e error, _ int) string {
		return e.Error()
	})
}
