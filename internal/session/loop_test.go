package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/cfdbg/internal/domain"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := newLoop()
	defer l.close()

	got := make(chan int, 10)
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.post(func() { got <- i }))
	}
	// Tasks posted from a task run on a later turn
	l.post(func() {
		l.post(func() { got <- 6 })
		got <- 5
	})

	for want := 0; want <= 6; want++ {
		select {
		case v := <-got:
			assert.Equal(t, want, v)
		case <-time.After(waitFor):
			t.Fatal("task did not run")
		}
	}
}

func TestLoopCloseRejectsPosts(t *testing.T) {
	l := newLoop()
	l.close()
	l.close()
	assert.False(t, l.post(func() {}))
}

func TestEmitterDeliversInOrder(t *testing.T) {
	e := newEmitter()
	defer e.close()

	kinds := []domain.EventKind{domain.EventStopOnStep, domain.EventStopOnBreakpoint, domain.EventEnd}
	for _, k := range kinds {
		e.push(domain.Event{Kind: k})
	}
	for _, k := range kinds {
		select {
		case ev := <-e.out:
			assert.Equal(t, k, ev.Kind)
		case <-time.After(waitFor):
			t.Fatal("event not delivered")
		}
	}
}
