package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

const waitFor = 2 * time.Second

var errUnreachable = errors.New("connection refused")

// route answers a request; n is how many times path was requested before
type route func(path string, n int) (string, error)

// fakeShim is a scripted transport.Shim
type fakeShim struct {
	mu     sync.Mutex
	route  route
	counts map[string]int
	order  []string
}

func newFakeShim(r route) *fakeShim {
	return &fakeShim{route: r, counts: make(map[string]int)}
}

func (f *fakeShim) Call(_ context.Context, _ string, path string) (gjson.Result, error) {
	f.mu.Lock()
	n := f.counts[path]
	f.counts[path]++
	if len(f.order) < 64 {
		f.order = append(f.order, path)
	}
	r := f.route
	f.mu.Unlock()

	body, err := r(path, n)
	if err != nil {
		return gjson.Result{}, errors.Join(transport.ErrRequest, err)
	}
	return gjson.Parse(body), nil
}

func (f *fakeShim) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[path]
}

func (f *fakeShim) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// running answers every execution request with Running
func running(path string, _ int) (string, error) {
	return `{"execution":"Running"}`, nil
}

func newTestController(t *testing.T, r route, opts ...Option) (*Controller, *fakeShim, *clock.Mock) {
	t.Helper()
	shim := newFakeShim(r)
	mock := clock.NewMock()
	c := NewController(shim, append([]Option{WithClock(mock)}, opts...)...)
	t.Cleanup(c.Close)
	return c, shim, mock
}

// timerClock is a mock clock that remembers every timer armed on it
type timerClock struct {
	*clock.Mock
	mu     sync.Mutex
	timers map[time.Duration][]*clock.Timer
}

func newTimerClock() *timerClock {
	return &timerClock{Mock: clock.NewMock(), timers: make(map[time.Duration][]*clock.Timer)}
}

func (c *timerClock) AfterFunc(d time.Duration, f func()) *clock.Timer {
	t := c.Mock.AfterFunc(d, f)
	c.mu.Lock()
	c.timers[d] = append(c.timers[d], t)
	c.mu.Unlock()
	return t
}

// stopPending stops every timer armed for d and reports how many had neither
// fired nor been stopped yet
func (c *timerClock) stopPending(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := 0
	for _, t := range c.timers[d] {
		if t.Stop() {
			pending++
		}
	}
	return pending
}

// onLoop runs fn on the controller loop and returns its result
func onLoop[T any](t *testing.T, c *Controller, fn func() T) T {
	t.Helper()
	ch := make(chan T, 1)
	require.True(t, c.loop.post(func() { ch <- fn() }))
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("loop did not run task")
	}
	var zero T
	return zero
}

// settle waits for every task queued so far to finish
func settle(t *testing.T, c *Controller) {
	t.Helper()
	onLoop(t, c, func() struct{} { return struct{}{} })
}

func nextEvent(t *testing.T, c *Controller) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(waitFor):
		t.Fatal("no event delivered")
	}
	return domain.Event{}
}

func requireNoEvent(t *testing.T, c *Controller, within time.Duration) {
	t.Helper()
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event %q", ev.Kind)
	case <-time.After(within):
	}
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, waitFor, time.Millisecond,
		"state never became %s", want)
	settle(t, c)
}

// pollerActive is safe to call from require.Eventually conditions
func pollerActive(c *Controller) bool {
	ch := make(chan bool, 1)
	if !c.loop.post(func() { ch <- c.poller.active() }) {
		return false
	}
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		return false
	}
}

// waitPollArmed waits for the poll timer to be re-armed after n polls
func waitPollArmed(t *testing.T, c *Controller, shim *fakeShim, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return shim.count(transport.PathPoll) >= n && pollerActive(c)
	}, waitFor, time.Millisecond)
}
