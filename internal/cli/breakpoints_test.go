package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBreakpointArg(t *testing.T) {
	tests := []struct {
		arg   string
		path  string
		lines []int
	}{
		{"main.cf:3", "main.cf", []int{3}},
		{"main.cf:3,9, 12", "main.cf", []int{3, 9, 12}},
		{"lib/util.cf:4,4", "lib/util.cf", []int{4}},
		{"file:///srv/app.cf:7", "file:///srv/app.cf", []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			bp, err := parseBreakpointArg(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.path, bp.Path)
			assert.Equal(t, tt.lines, bp.Lines)
		})
	}
}

func TestParseBreakpointArgErrors(t *testing.T) {
	for _, arg := range []string{"main.cf", ":3", "main.cf:", "main.cf:,", "main.cf:0", "main.cf:-2", "main.cf:a"} {
		t.Run(arg, func(t *testing.T) {
			_, err := parseBreakpointArg(arg)
			assert.Error(t, err)
		})
	}
}

func TestParseBreakpointArgs(t *testing.T) {
	bps, err := parseBreakpointArgs([]string{"a.cf:1", "b.cf:2,3"})
	require.NoError(t, err)
	require.Len(t, bps, 2)
	assert.Equal(t, "b.cf", bps[1].Path)

	_, err = parseBreakpointArgs([]string{"a.cf:1", "b.cf"})
	assert.Error(t, err)
}
