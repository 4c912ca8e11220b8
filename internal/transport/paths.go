package transport

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Request paths understood by the debug server
const (
	PathPoll        = "/execution/poll"
	PathContinue    = "/execution/continue"
	PathStep        = "/execution/step"
	PathPause       = "/execution/pause"
	PathStackTrace  = "/stacktrace"
	PathStackValues = "/values/stack"
)

// SourceContentPath builds the request for the text of a source file
func SourceContentPath(uri string) string {
	return "/sources/content?uri=" + url.QueryEscape(uri)
}

// SetBreakpointsPath builds the request replacing every breakpoint of path.
// Lines are joined with a literal comma.
func SetBreakpointsPath(path string, lines []int) string {
	csv := strings.Join(lo.Map(lines, func(line int, _ int) string {
		return strconv.Itoa(line)
	}), ",")
	return "/breakpoints/set?path=" + url.QueryEscape(path) + "&lines=" + csv
}
