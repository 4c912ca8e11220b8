package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mattn/go-isatty"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/output"
	"github.com/vburojevic/cfdbg/internal/session"
)

// AttachCmd starts a debug session and streams its events
type AttachCmd struct {
	Break            []string      `short:"b" sep:"none" help:"Breakpoint as path:line,line (can be repeated)"`
	PollInterval     time.Duration `default:"${config_poll_interval=1s}" help:"Execution poll interval while the program runs"`
	HandshakeTimeout time.Duration `default:"${config_handshake_timeout=5s}" help:"How long to wait for the server to answer"`
	NoInput          bool          `help:"Do not read commands from stdin"`
	OnBreakpoint     string        `help:"Command to run when a breakpoint is hit"`
	OnStep           string        `help:"Command to run when a step completes"`
	OnPause          string        `help:"Command to run when the program is paused"`
	OnEnd            string        `help:"Command to run when the session ends"`
	Cooldown         string        `default:"5s" help:"Minimum time between runs of the same trigger"`
}

// attachRun is the state of one attach invocation
type attachRun struct {
	globals     *Globals
	cmd         *AttachCmd
	out         output.Writer
	ctl         *session.Controller
	tracker     *session.Tracker
	triggers    *triggerSet
	breakpoints int

	mu        sync.Mutex
	sessionID string
}

// Run executes the attach command
func (c *AttachCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return c.run(ctx, globals, clock.New())
}

func (c *AttachCmd) run(ctx context.Context, globals *Globals, clk clock.Clock) error {
	if err := validateFlags(globals, c.PollInterval, c.HandshakeTimeout); err != nil {
		return err
	}

	cooldown, err := time.ParseDuration(c.Cooldown)
	if err != nil {
		return reportError(globals, codeInvalidCooldown, fmt.Sprintf("invalid cooldown duration: %s", err))
	}

	var bpArgs []string
	if globals.Config != nil {
		bpArgs = append(bpArgs, globals.Config.Session.Breakpoints...)
	}
	bpArgs = append(bpArgs, c.Break...)
	breakpoints, err := parseBreakpointArgs(bpArgs)
	if err != nil {
		return reportError(globals, codeInvalidBreakpoint, err.Error(), "use path:line,line, e.g. main.cf:10,12")
	}

	out := output.New(globals.Format, globals.Stdout)
	a := &attachRun{
		globals:     globals,
		cmd:         c,
		out:         out,
		tracker:     session.NewTracker("", clk),
		triggers:    newTriggerSet(c, cooldown, clk, out, globals.URL),
		breakpoints: len(breakpoints),
	}

	logger := newDebugLogger(globals, a.id)
	defer logger.Sync()

	a.ctl = session.NewController(globals.shim(),
		session.WithClock(clk),
		session.WithLogger(logger.Zap()),
		session.WithHandshakeTimeout(c.HandshakeTimeout),
		session.WithStateHook(a.onStateChange),
	)
	defer a.ctl.Close()

	for _, bp := range breakpoints {
		a.setBreakpoints(bp.Path, bp.Lines)
	}
	a.ctl.Start(globals.URL, c.PollInterval)

	if !globals.Quiet {
		out.WriteInfo(fmt.Sprintf("Attaching to %s", globals.URL))
	}

	var lines <-chan string
	if !c.NoInput && globals.Stdin != nil {
		lines = readCommands(ctx, globals.Stdin, a.prompt())
	}
	return a.loop(ctx, lines)
}

// loop relays events and stdin commands until the session ends
func (a *attachRun) loop(ctx context.Context, lines <-chan string) error {
	done := ctx.Done()
	stopping := false
	stop := func() {
		if !stopping {
			stopping = true
			a.ctl.Stop()
		}
	}

	for {
		select {
		case <-done:
			done = nil
			stop()

		case ev, ok := <-a.ctl.Events():
			if !ok {
				return nil
			}
			id := a.id()
			a.out.WriteEvent(id, ev)
			a.triggers.fire(ev, id)
			if end := a.tracker.CheckEvent(ev); end != nil {
				a.out.WriteSessionEnd(end)
				a.triggers.wait()
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if a.handle(line) {
				stop()
			}
		}
	}
}

// handle runs one stdin command and reports whether the session should stop
func (a *attachRun) handle(line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		a.out.WriteWarning(err.Error())
		return false
	}

	switch cmd.Verb {
	case verbContinue:
		a.ctl.Continue()
	case verbStep:
		a.ctl.Step()
	case verbPause:
		a.ctl.Pause()
	case verbStack:
		start := cmd.Ints[0]
		a.ctl.StackTrace(start, cmd.Ints[1], func(frames []domain.StackFrame) {
			a.out.WriteFrames(start, frames)
		})
	case verbVars:
		index := cmd.Ints[0]
		a.ctl.Variables(index, cmd.Ints[1], cmd.Ints[2], func(vars []domain.VariableNode) {
			a.out.WriteVariables(index, vars)
		})
	case verbSource:
		uri := cmd.URI
		a.ctl.Source(uri, func(content string) {
			a.out.WriteSource(uri, content)
		})
	case verbBreak:
		a.setBreakpoints(cmd.Path, cmd.Lines)
	case verbHelp:
		a.out.WriteInfo(attachHelp)
	case verbStop:
		return true
	}
	return false
}

func (a *attachRun) setBreakpoints(path string, lines []int) {
	a.ctl.SetBreakpoints(path, lines, func(accepted []int) {
		a.out.WriteBreakpoints(path, lines, accepted)
	})
}

// onStateChange runs on the controller loop
func (a *attachRun) onStateChange(sessionID string, from, to session.State, in session.Input) {
	if to == session.StateHandshaking {
		a.mu.Lock()
		a.sessionID = sessionID
		a.mu.Unlock()
		a.tracker.Reset(sessionID)
		interval := a.cmd.PollInterval
		if interval <= 0 {
			interval = session.DefaultPollInterval
		}
		a.out.WriteSessionStart(domain.NewSessionStart(sessionID, a.globals.URL, interval, a.breakpoints))
	}
	if a.globals.Verbose {
		a.out.WriteSessionDebug(&domain.SessionDebug{
			Type:          "session_debug",
			SchemaVersion: output.SchemaVersion,
			SessionID:     sessionID,
			From:          from.String(),
			To:            to.String(),
			Reason:        in.String(),
		})
	}
}

func (a *attachRun) id() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// prompt returns a prompt printer when stdin is an interactive terminal
func (a *attachRun) prompt() func() {
	f, ok := a.globals.Stdin.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return func() {
		fmt.Fprint(a.globals.Stderr, "(cfdbg) ")
	}
}
