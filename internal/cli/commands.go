package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// attachCommand is one parsed stdin line of an attach session
type attachCommand struct {
	Verb  string
	Ints  []int
	Path  string
	Lines []int
	URI   string
}

// Verbs understood by attach, with their aliases
const (
	verbContinue = "continue"
	verbStep     = "step"
	verbPause    = "pause"
	verbStack    = "stack"
	verbVars     = "vars"
	verbSource   = "source"
	verbBreak    = "break"
	verbStop     = "stop"
	verbHelp     = "help"
)

var verbAliases = map[string]string{
	"continue": verbContinue, "c": verbContinue,
	"step": verbStep, "s": verbStep, "next": verbStep, "n": verbStep,
	"pause": verbPause, "p": verbPause,
	"stack": verbStack, "bt": verbStack,
	"vars": verbVars, "v": verbVars,
	"source": verbSource, "src": verbSource,
	"break": verbBreak, "b": verbBreak,
	"stop": verbStop, "quit": verbStop, "q": verbStop, "exit": verbStop,
	"help": verbHelp, "?": verbHelp,
}

const attachHelp = `Commands:
  continue | c                   resume the program
  step | s                       step one statement
  pause | p                      pause the program
  stack [start] [count]          print call stack frames
  vars [index] [start] [count]   print variables (index 0 = top level)
  source <uri>                   print a source file
  break <path> <line,line>       set every breakpoint of a path
  stop | quit                    end the session`

// parseCommand parses one line. An empty line yields an empty verb.
func parseCommand(line string) (attachCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return attachCommand{}, nil
	}
	verb, ok := verbAliases[strings.ToLower(fields[0])]
	if !ok {
		return attachCommand{}, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	args := fields[1:]
	cmd := attachCommand{Verb: verb}

	switch verb {
	case verbStack:
		ints, err := intArgs(args, 0, 20)
		if err != nil {
			return attachCommand{}, fmt.Errorf("stack: %w", err)
		}
		cmd.Ints = ints
	case verbVars:
		ints, err := intArgs(args, 0, 0, 100)
		if err != nil {
			return attachCommand{}, fmt.Errorf("vars: %w", err)
		}
		cmd.Ints = ints
	case verbSource:
		if len(args) != 1 {
			return attachCommand{}, fmt.Errorf("source: want exactly one uri")
		}
		cmd.URI = args[0]
	case verbBreak:
		if len(args) != 2 {
			return attachCommand{}, fmt.Errorf("break: want <path> <line,line>")
		}
		lines, err := parseLines(args[1])
		if err != nil {
			return attachCommand{}, fmt.Errorf("break: %w", err)
		}
		cmd.Path, cmd.Lines = args[0], lines
	default:
		if len(args) > 0 {
			return attachCommand{}, fmt.Errorf("%s takes no arguments", verb)
		}
	}
	return cmd, nil
}

// intArgs parses up to len(defaults) non negative integers, filling the rest
// from defaults
func intArgs(args []string, defaults ...int) ([]int, error) {
	if len(args) > len(defaults) {
		return nil, fmt.Errorf("want at most %d numbers", len(defaults))
	}
	out := append([]int(nil), defaults...)
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = n
	}
	return out, nil
}

// readCommands delivers stdin lines until EOF or ctx is done. prompt, when
// not nil, runs before each read.
func readCommands(ctx context.Context, r io.Reader, prompt func()) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for {
			if prompt != nil {
				prompt()
			}
			if !scanner.Scan() {
				return
			}
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
