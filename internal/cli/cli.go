// Package cli implements the cfdbg command line.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/vburojevic/cfdbg/internal/config"
	"github.com/vburojevic/cfdbg/internal/transport"
)

// Version and Commit are set at build time
var (
	Version = "dev"
	Commit  = "none"
)

// CLI is the root command
type CLI struct {
	Format  string        `short:"f" default:"${config_format=ndjson}" enum:"ndjson,text" help:"Output format (ndjson or text)"`
	Quiet   bool          `short:"q" help:"Suppress informational output"`
	Verbose bool          `short:"v" help:"Debug logging to stderr"`
	URL     string        `short:"u" default:"${config_url=http://localhost:4747}" help:"Debug server base URL"`
	Timeout time.Duration `default:"${config_request_timeout=10s}" help:"Per request timeout"`

	Attach  AttachCmd  `cmd:"" help:"Start a debug session and stream its events"`
	Stack   StackCmd   `cmd:"" help:"Print the call stack of the paused program"`
	Vars    VarsCmd    `cmd:"" help:"Print stack variables of the paused program"`
	Source  SourceCmd  `cmd:"" help:"Print the content of a source file"`
	Config  ConfigCmd  `cmd:"" help:"Show or generate configuration"`
	Schema  SchemaCmd  `cmd:"" help:"Print JSON Schema for NDJSON output"`
	Version VersionCmd `cmd:"" help:"Print version information"`
	Update  UpdateCmd  `cmd:"" help:"Show how to upgrade cfdbg"`
}

// Globals holds settings shared by every command
type Globals struct {
	Format         string
	Quiet          bool
	Verbose        bool
	URL            string
	RequestTimeout time.Duration
	Stdin          io.Reader
	Stdout         io.Writer
	Stderr         io.Writer
	Config         *config.Config

	// Shim overrides the HTTP transport, mainly for tests
	Shim transport.Shim
}

// NewGlobalsWithConfig merges parsed flags with loaded configuration
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:         c.Format,
		Quiet:          c.Quiet || cfg.Quiet,
		Verbose:        c.Verbose || cfg.Verbose,
		URL:            c.URL,
		RequestTimeout: c.Timeout,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Config:         cfg,
	}
	if g.Format == "" {
		g.Format = cfg.Format
	}
	if g.URL == "" {
		g.URL = cfg.Server.URL
	}
	return g
}

// shim returns the transport commands talk through
func (g *Globals) shim() transport.Shim {
	if g.Shim != nil {
		return g.Shim
	}
	return transport.NewHTTPShim(g.RequestTimeout)
}
