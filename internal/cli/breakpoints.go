package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// breakpointArg is one --break value
type breakpointArg struct {
	Path  string
	Lines []int
}

// parseBreakpointArg parses "path:line,line". The path may itself contain
// colons; the last one separates the lines.
func parseBreakpointArg(arg string) (breakpointArg, error) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 0 || idx == len(arg)-1 {
		return breakpointArg{}, fmt.Errorf("invalid breakpoint %q: want path:line,line", arg)
	}
	path := strings.TrimSpace(arg[:idx])
	lines, err := parseLines(arg[idx+1:])
	if err != nil {
		return breakpointArg{}, fmt.Errorf("invalid breakpoint %q: %w", arg, err)
	}
	return breakpointArg{Path: path, Lines: lines}, nil
}

// parseLines parses a comma separated list of positive line numbers
func parseLines(csv string) ([]int, error) {
	var lines []int
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid line %q", part)
		}
		lines = append(lines, n)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines given")
	}
	return lo.Uniq(lines), nil
}

// parseBreakpointArgs parses every arg, failing on the first bad one
func parseBreakpointArgs(args []string) ([]breakpointArg, error) {
	out := make([]breakpointArg, 0, len(args))
	for _, s := range args {
		bp, err := parseBreakpointArg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, nil
}
