package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/cfdbg/internal/cli"
	"github.com/vburojevic/cfdbg/internal/config"
)

const quickStart = `cfdbg - client for remote program debug servers

Quick start:
  cfdbg attach -b main.cf:12            Start a session with a breakpoint
  cfdbg stack                           Call stack of the paused program
  cfdbg vars                            Top level stack variables

For help:
  cfdbg --help                          All commands and flags
  cfdbg schema                          JSON Schema of every output line
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":            cfg.Format,
		"config_url":               cfg.Server.URL,
		"config_request_timeout":   cfg.Server.RequestTimeout.String(),
		"config_poll_interval":     cfg.Server.PollInterval.String(),
		"config_handshake_timeout": cfg.Session.HandshakeTimeout.String(),
	}

	ctx := kong.Parse(&c,
		kong.Name("cfdbg"),
		kong.Description("cfdbg: drive a remote debug server from the command line\n\nEvery command writes NDJSON by default; run 'cfdbg schema' for the output types"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
