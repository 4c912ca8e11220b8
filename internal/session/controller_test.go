package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

func TestHandshakeTimeoutEndsOnce(t *testing.T) {
	c, shim, mock := newTestController(t, func(path string, n int) (string, error) {
		return "", errUnreachable
	})

	c.Start("http://x", time.Second)
	waitState(t, c, StateHandshaking)

	// Failed probes are retried without waiting on the clock
	require.Eventually(t, func() bool { return shim.count(transport.PathPoll) > 3 }, waitFor, time.Millisecond)
	requireNoEvent(t, c, 20*time.Millisecond)

	mock.Add(DefaultHandshakeTimeout - time.Millisecond)
	requireNoEvent(t, c, 20*time.Millisecond)
	assert.Equal(t, StateHandshaking, c.State())

	mock.Add(time.Millisecond)
	assert.Equal(t, domain.EventEnd, nextEvent(t, c).Kind)
	assert.Equal(t, StateEnded, c.State())
	requireNoEvent(t, c, 50*time.Millisecond)

	// Probing stops once the session has ended
	before := shim.count(transport.PathPoll)
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, shim.count(transport.PathPoll), before+1)
}

func TestHandshakeSucceedsOnThirdProbe(t *testing.T) {
	bpPath := transport.SetBreakpointsPath("main.cf", []int{4})
	c, shim, _ := newTestController(t, func(path string, n int) (string, error) {
		switch path {
		case transport.PathPoll:
			if n < 2 {
				return "", errUnreachable
			}
			return `{"execution":"Running"}`, nil
		case bpPath:
			return `[4]`, nil
		default:
			return `{"execution":"Running"}`, nil
		}
	})

	accepted := make(chan []int, 1)
	c.SetBreakpoints("main.cf", []int{4}, func(lines []int) { accepted <- lines })
	c.Start("http://x", time.Second)

	select {
	case lines := <-accepted:
		assert.Equal(t, []int{4}, lines)
	case <-time.After(waitFor):
		t.Fatal("deferred breakpoints were not flushed")
	}

	require.Eventually(t, func() bool { return shim.count(transport.PathContinue) == 1 }, waitFor, time.Millisecond)
	assert.Equal(t, StateLive, c.State())

	calls := shim.calls()
	require.GreaterOrEqual(t, len(calls), 5)
	assert.Equal(t, []string{transport.PathPoll, transport.PathPoll, transport.PathPoll}, calls[:3])
	assert.Contains(t, calls[3:], bpPath)
	assert.Contains(t, calls[3:], transport.PathContinue)
	assert.Equal(t, 1, shim.count(bpPath))
}

func TestDeferredBreakpointsLastRegistrationWins(t *testing.T) {
	first := transport.SetBreakpointsPath("a.cf", []int{1})
	second := transport.SetBreakpointsPath("a.cf", []int{3, 4})
	other := transport.SetBreakpointsPath("b.cf", []int{2})
	c, shim, _ := newTestController(t, func(path string, n int) (string, error) {
		switch path {
		case second:
			return `[3,"x",4,null]`, nil
		case other:
			return `[2]`, nil
		case first:
			return `[1]`, nil
		}
		return `{"execution":"Running"}`, nil
	})

	var mu sync.Mutex
	results := map[string][]int{}
	record := func(key string) func([]int) {
		return func(lines []int) {
			mu.Lock()
			defer mu.Unlock()
			results[key] = lines
		}
	}

	c.SetBreakpoints("a.cf", []int{1}, record("a1"))
	c.SetBreakpoints("b.cf", []int{2}, record("b"))
	c.SetBreakpoints("a.cf", []int{3, 4}, record("a2"))
	assert.Equal(t, 2, onLoop(t, c, func() int { return c.deferred.len() }))
	assert.Zero(t, shim.count(first)+shim.count(second)+shim.count(other))

	c.Start("http://x", time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 2
	}, waitFor, time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int{3, 4}, results["a2"])
	assert.Equal(t, []int{2}, results["b"])
	assert.NotContains(t, results, "a1")
	mu.Unlock()

	assert.Zero(t, shim.count(first))
	assert.Equal(t, 1, shim.count(second))
	assert.Equal(t, 1, shim.count(other))
	assert.Zero(t, onLoop(t, c, func() int { return c.deferred.len() }))
}

func TestSetBreakpointsWhenLiveGoesStraightThrough(t *testing.T) {
	bpPath := transport.SetBreakpointsPath("main.cf", []int{10, 11})
	c, shim, _ := newTestController(t, func(path string, n int) (string, error) {
		if path == bpPath {
			return `[10]`, nil
		}
		return `{"execution":"Running"}`, nil
	})

	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)

	accepted := make(chan []int, 1)
	c.SetBreakpoints("main.cf", []int{10, 11}, func(lines []int) { accepted <- lines })
	select {
	case lines := <-accepted:
		assert.Equal(t, []int{10}, lines)
	case <-time.After(waitFor):
		t.Fatal("breakpoints callback not invoked")
	}
	assert.Equal(t, 1, shim.count(bpPath))
}

func TestSetBreakpointsFailureNeverCallsBack(t *testing.T) {
	c, shim, _ := newTestController(t, func(path string, n int) (string, error) {
		if path == transport.PathPoll {
			return `{"execution":"Running"}`, nil
		}
		return "", errUnreachable
	})
	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)

	called := make(chan struct{}, 1)
	bpPath := transport.SetBreakpointsPath("main.cf", []int{1})
	c.SetBreakpoints("main.cf", []int{1}, func([]int) { called <- struct{}{} })
	require.Eventually(t, func() bool { return shim.count(bpPath) == 1 }, waitFor, time.Millisecond)

	select {
	case <-called:
		t.Fatal("callback invoked after transport failure")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestStopEmitsEndOnEveryCall(t *testing.T) {
	c, _, mock := newTestController(t, func(path string, n int) (string, error) {
		return "", errUnreachable
	})

	c.Start("http://x", time.Second)
	waitState(t, c, StateHandshaking)
	c.Stop()
	assert.Equal(t, domain.EventEnd, nextEvent(t, c).Kind)

	// The handshake guard firing later must not add a second end
	mock.Add(DefaultHandshakeTimeout)
	requireNoEvent(t, c, 30*time.Millisecond)

	c.Stop()
	assert.Equal(t, domain.EventEnd, nextEvent(t, c).Kind)
	assert.Equal(t, StateEnded, c.State())
}

func TestStopBeforeStart(t *testing.T) {
	c, _, _ := newTestController(t, running)
	c.Stop()
	assert.Equal(t, domain.EventEnd, nextEvent(t, c).Kind)
	waitState(t, c, StateEnded)
}

func TestStartWhileLiveOnlyReconfigures(t *testing.T) {
	c, _, _ := newTestController(t, running)
	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)
	id := c.ID()
	require.NotEmpty(t, id)

	c.Start("http://y", 2*time.Second)
	settle(t, c)
	assert.Equal(t, StateLive, c.State())
	assert.Equal(t, id, c.ID())
	assert.Equal(t, "http://y", onLoop(t, c, func() string { return c.baseURL }))
	assert.Equal(t, 2*time.Second, onLoop(t, c, func() time.Duration { return c.pollInterval }))
}

func TestRestartAfterEnd(t *testing.T) {
	c, shim, _ := newTestController(t, running)
	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)
	first := c.ID()

	c.Stop()
	assert.Equal(t, domain.EventEnd, nextEvent(t, c).Kind)

	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)
	assert.NotEqual(t, first, c.ID())
	require.Eventually(t, func() bool { return shim.count(transport.PathContinue) == 2 }, waitFor, time.Millisecond)
}

func TestStateHookSeesTransitions(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	hook := func(id string, from, to State, in Input) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, from.String()+">"+to.String()+":"+in.String())
	}
	c, _, _ := newTestController(t, running, WithStateHook(hook))

	c.Start("http://x", time.Second)
	waitState(t, c, StateLive)
	c.Stop()
	waitState(t, c, StateEnded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"uninitialized>handshaking:start",
		"handshaking>live:probe_succeeded",
		"live>ended:stop",
	}, seen)
}

func TestCloseClosesEvents(t *testing.T) {
	c, _, _ := newTestController(t, running)
	c.Close()
	c.Close()

	select {
	case _, ok := <-c.Events():
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("events channel not closed")
	}
	assert.False(t, c.loop.post(func() {}))
}

func TestAccessorsUseConfiguredURLWithoutHandshake(t *testing.T) {
	urls := make(chan string, 4)
	shim := transport.ShimFunc(func(_ context.Context, baseURL, path string) (gjson.Result, error) {
		urls <- baseURL
		return gjson.Parse(`{"content":"x = 1"}`), nil
	})
	c := NewController(shim, WithURL("http://debug.local:9000"))
	t.Cleanup(c.Close)

	got := make(chan string, 1)
	c.Source("file:///main.cf", func(content string) { got <- content })

	select {
	case content := <-got:
		assert.Equal(t, "x = 1", content)
	case <-time.After(waitFor):
		t.Fatal("source callback not invoked")
	}
	assert.Equal(t, "http://debug.local:9000", <-urls)
	assert.Equal(t, StateUninitialized, c.State())
}

func TestFailureHookSeesSuppressedErrors(t *testing.T) {
	failed := make(chan string, 1)
	c, _, _ := newTestController(t, func(path string, n int) (string, error) {
		return "", errUnreachable
	}, WithFailureHook(func(path string, err error) {
		if errors.Is(err, transport.ErrRequest) {
			failed <- path
		}
	}))

	c.StackTrace(0, 10, func([]domain.StackFrame) { t.Error("callback invoked after failure") })

	select {
	case path := <-failed:
		assert.Equal(t, transport.PathStackTrace, path)
	case <-time.After(waitFor):
		t.Fatal("failure hook not invoked")
	}
}
