package session

import (
	"time"

	"github.com/benbjohnson/clock"
)

// pollTimer is the single cancellable timer handle owned by the poller.
// arm always cancels first, so at most one timer is ever pending.
type pollTimer struct {
	clock clock.Clock
	timer *clock.Timer
	seq   uint64
}

// arm cancels any pending timer and schedules fire after d. The clock callback
// only posts to the loop; fire runs there, and is skipped if the timer was
// cancelled or re-armed in the meantime.
func (p *pollTimer) arm(d time.Duration, post func(func()) bool, fire func()) {
	p.cancel()
	seq := p.seq
	p.timer = p.clock.AfterFunc(d, func() {
		post(func() {
			if p.timer == nil || p.seq != seq {
				return
			}
			p.timer = nil
			fire()
		})
	})
}

func (p *pollTimer) cancel() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.seq++
}

func (p *pollTimer) armed() bool {
	return p.timer != nil
}
