package session

import (
	"math"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

// deferralQueue buffers breakpoint requests made before the handshake.
// A path keeps the position of its first registration; later registrations
// for the same path replace its lines and callback.
type deferralQueue struct {
	order    []string
	requests map[string]domain.BreakpointRequest
}

func newDeferralQueue() *deferralQueue {
	return &deferralQueue{requests: make(map[string]domain.BreakpointRequest)}
}

func (q *deferralQueue) put(req domain.BreakpointRequest) {
	if _, ok := q.requests[req.Path]; !ok {
		q.order = append(q.order, req.Path)
	}
	q.requests[req.Path] = req
}

func (q *deferralQueue) len() int {
	return len(q.order)
}

// flush hands every buffered request to send in registration order and
// empties the queue
func (q *deferralQueue) flush(send func(domain.BreakpointRequest)) {
	order, requests := q.order, q.requests
	q.order = nil
	q.requests = make(map[string]domain.BreakpointRequest)
	for _, path := range order {
		send(requests[path])
	}
}

// SetBreakpoints replaces the breakpoints of path. Once the session has
// started the request goes straight to the server and fn receives the lines
// it accepted; before that it is buffered until the handshake. fn is never
// called if the request fails.
func (c *Controller) SetBreakpoints(path string, lines []int, fn func(accepted []int)) {
	req := domain.BreakpointRequest{
		Path:     path,
		Lines:    append([]int(nil), lines...),
		OnResult: fn,
	}
	c.loop.post(func() {
		if c.state.Started() {
			c.sendBreakpoints(req)
			return
		}
		c.deferred.put(req)
		c.logger.Debug("breakpoints deferred", zap.String("path", path), zap.Ints("lines", req.Lines))
	})
}

// PendingBreakpoints calls fn on the loop with the number of buffered paths.
func (c *Controller) PendingBreakpoints(fn func(n int)) {
	c.loop.post(func() { fn(c.deferred.len()) })
}

func (c *Controller) sendBreakpoints(req domain.BreakpointRequest) {
	c.request(transport.SetBreakpointsPath(req.Path, req.Lines), func(res gjson.Result, err error) {
		if err != nil {
			c.logger.Debug("set breakpoints failed", zap.String("path", req.Path), zap.Error(err))
			return
		}
		accepted := acceptedLines(res)
		if req.OnResult != nil {
			req.OnResult(accepted)
		}
	})
}

// acceptedLines keeps the integer entries of a breakpoints response. A
// fractional number is not a line and is dropped rather than truncated.
func acceptedLines(res gjson.Result) []int {
	if !res.IsArray() {
		return []int{}
	}
	return lo.FilterMap(res.Array(), func(v gjson.Result, _ int) (int, bool) {
		if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) {
			return 0, false
		}
		return int(v.Num), true
	})
}
