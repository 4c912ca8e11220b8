package session

import "sync"

// loop runs posted tasks one at a time on a single goroutine. Every piece of
// controller state is touched only from inside a task, so none of it needs
// locking.
type loop struct {
	mu      sync.Mutex
	tasks   []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newLoop() *loop {
	l := &loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

// post queues fn to run on a later turn. It never blocks and reports false
// once the loop is closed.
func (l *loop) post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.tasks) == 0 {
		return nil
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn
}

func (l *loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for fn := l.next(); fn != nil; fn = l.next() {
			fn()
		}
	}
}

// close discards queued tasks and waits for the running one to finish.
// It must not be called from inside a task.
func (l *loop) close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		l.tasks = nil
		close(l.done)
	}
	l.mu.Unlock()
	<-l.stopped
}
