package session

import (
	"sync"

	"github.com/vburojevic/cfdbg/internal/domain"
)

// emitter delivers events to the host in order without ever blocking the
// loop, however slowly the host drains them.
type emitter struct {
	mu    sync.Mutex
	queue []domain.Event
	wake  chan struct{}
	done  chan struct{}
	out   chan domain.Event
	once  sync.Once
}

func newEmitter() *emitter {
	e := &emitter{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan domain.Event),
	}
	go e.pump()
	return e
}

func (e *emitter) push(ev domain.Event) {
	e.mu.Lock()
	e.queue = append(e.queue, ev)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *emitter) pump() {
	defer close(e.out)
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			select {
			case <-e.wake:
				continue
			case <-e.done:
				return
			}
		}
		ev := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		select {
		case e.out <- ev:
		case <-e.done:
			return
		}
	}
}

// close stops delivery; undelivered events are dropped and out is closed
func (e *emitter) close() {
	e.once.Do(func() { close(e.done) })
}
