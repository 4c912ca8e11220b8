package cli

import (
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/output"
)

// triggerNames maps event kinds to the trigger names shown in output
var triggerNames = map[domain.EventKind]string{
	domain.EventStopOnBreakpoint: "breakpoint",
	domain.EventStopOnStep:       "step",
	domain.EventStopOnPause:      "pause",
	domain.EventEnd:              "end",
}

// triggerSet runs shell commands for session events. fire is called from a
// single goroutine.
type triggerSet struct {
	commands map[domain.EventKind]string
	cooldown time.Duration
	clock    clock.Clock
	last     map[domain.EventKind]time.Time
	out      output.Writer
	url      string
	wg       sync.WaitGroup

	// run executes a command; replaced in tests
	run func(command string, env []string) error
}

func newTriggerSet(c *AttachCmd, cooldown time.Duration, clk clock.Clock, out output.Writer, url string) *triggerSet {
	commands := map[domain.EventKind]string{}
	for kind, command := range map[domain.EventKind]string{
		domain.EventStopOnBreakpoint: c.OnBreakpoint,
		domain.EventStopOnStep:       c.OnStep,
		domain.EventStopOnPause:      c.OnPause,
		domain.EventEnd:              c.OnEnd,
	} {
		if command != "" {
			commands[kind] = command
		}
	}
	return &triggerSet{
		commands: commands,
		cooldown: cooldown,
		clock:    clk,
		last:     make(map[domain.EventKind]time.Time),
		out:      out,
		url:      url,
		run:      runShell,
	}
}

// fire starts the command for ev unless the same trigger ran within the
// cooldown. End triggers always run.
func (t *triggerSet) fire(ev domain.Event, sessionID string) bool {
	command, ok := t.commands[ev.Kind]
	if !ok {
		return false
	}
	now := t.clock.Now()
	if last, seen := t.last[ev.Kind]; seen && ev.Kind != domain.EventEnd && now.Sub(last) < t.cooldown {
		return false
	}
	t.last[ev.Kind] = now

	name := triggerNames[ev.Kind]
	t.out.WriteTrigger(name, command, sessionID)

	env := append(os.Environ(),
		"CFDBG_TRIGGER="+name,
		"CFDBG_EVENT="+string(ev.Kind),
		"CFDBG_SESSION_ID="+sessionID,
		"CFDBG_URL="+t.url,
		"CFDBG_TIMESTAMP="+now.UTC().Format(time.RFC3339),
	)

	// Run command in background (don't block event processing)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.run(command, env); err != nil {
			t.out.WriteTriggerError(command, err)
		}
	}()
	return true
}

// wait blocks until every started command has finished
func (t *triggerSet) wait() {
	t.wg.Wait()
}

func runShell(command string, env []string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Env = env
	return cmd.Run()
}
