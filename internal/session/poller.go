package session

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/cfdbg/internal/transport"
)

// poller repeatedly asks the server for its execution status.
//
// A polled pause raises its event but does not stop the loop; only cancel
// (from Stop, Continue, Step or a paused command response) does. Each start
// begins a new run, and a poll response from an older run never re-arms the
// timer, so at most one loop is ever active.
type poller struct {
	c     *Controller
	timer pollTimer
	run   uint64
}

// start cancels any active loop and polls immediately
func (p *poller) start() {
	p.cancel()
	p.cycle(p.run)
}

func (p *poller) cancel() {
	p.run++
	p.timer.cancel()
}

func (p *poller) cycle(run uint64) {
	c := p.c
	c.request(transport.PathPoll, func(res gjson.Result, err error) {
		if err != nil {
			c.logger.Debug("poll failed", zap.Error(err))
		} else if kind, ok := executionOf(res).PollEvent(); ok {
			c.emit(kind)
		}

		if run != p.run {
			return
		}
		p.timer.arm(c.pollInterval, c.loop.post, func() { p.cycle(run) })
	})
}

// active reports whether a poll timer is currently pending
func (p *poller) active() bool {
	return p.timer.armed()
}
