// Package session tracks the execution state of a program running inside a
// remote debug server.
//
// A Controller owns one session. It performs the handshake with the server,
// buffers breakpoints registered before the session is live, drives the
// execution poller and relays pauses and the end of the session as events.
// Every method returns immediately; work runs on the controller's own loop
// goroutine and results are delivered through callbacks invoked on that loop.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

const (
	// DefaultHandshakeTimeout is how long Start waits for a first successful probe
	DefaultHandshakeTimeout = 5 * time.Second
	// DefaultPollInterval is used when Start is given a non-positive interval
	DefaultPollInterval = time.Second
	// DefaultURL is the debug server address used before Start
	DefaultURL = "http://localhost:4747"
)

// StateHook observes every state change of a controller.
type StateHook func(sessionID string, from, to State, in Input)

// FailureHook observes transport failures the controller otherwise absorbs.
type FailureHook func(path string, err error)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) {
		if c != nil {
			ctl.clock = c
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// WithHandshakeTimeout overrides DefaultHandshakeTimeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.handshakeTimeout = d
		}
	}
}

// WithURL sets the target used before the first Start. Accessors such as
// StackTrace work against it without a handshake.
func WithURL(url string) Option {
	return func(ctl *Controller) {
		if url != "" {
			ctl.baseURL = url
		}
	}
}

// WithFailureHook registers a hook called on the loop for every failed request.
func WithFailureHook(h FailureHook) Option {
	return func(ctl *Controller) {
		ctl.failureHook = h
	}
}

// WithStateHook registers a hook called on the loop after each state change.
func WithStateHook(h StateHook) Option {
	return func(ctl *Controller) {
		ctl.stateHook = h
	}
}

// Controller is the session lifecycle controller.
type Controller struct {
	shim             transport.Shim
	clock            clock.Clock
	logger           *zap.Logger
	handshakeTimeout time.Duration
	stateHook        StateHook
	failureHook      FailureHook

	loop   *loop
	events *emitter
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	// Mirrors readable from any goroutine
	stateView atomic.Int32
	idMu      sync.RWMutex
	idView    string

	// Owned by the loop
	baseURL      string
	pollInterval time.Duration
	state        State
	generation   uint64
	sessionID    string
	poller       *poller
	deferred     *deferralQueue
	variables    variableCache
}

// NewController creates a controller talking to the server through shim.
// Call Close to release it.
func NewController(shim transport.Shim, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		shim:             shim,
		clock:            clock.New(),
		logger:           zap.NewNop(),
		handshakeTimeout: DefaultHandshakeTimeout,
		ctx:              ctx,
		cancel:           cancel,
		baseURL:          DefaultURL,
		pollInterval:     DefaultPollInterval,
		deferred:         newDeferralQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.poller = &poller{c: c, timer: pollTimer{clock: c.clock}}
	c.loop = newLoop()
	c.events = newEmitter()
	return c
}

// Events returns the channel lifecycle events are delivered on. It is closed
// by Close.
func (c *Controller) Events() <-chan domain.Event {
	return c.events.out
}

// State returns the most recent lifecycle state.
func (c *Controller) State() State {
	return State(c.stateView.Load())
}

// ID returns the id of the current session generation, empty before Start.
func (c *Controller) ID() string {
	c.idMu.RLock()
	defer c.idMu.RUnlock()
	return c.idView
}

// Close stops the loop, abandons in-flight requests and closes Events. It
// does not emit end. Close must not be called from a controller callback.
func (c *Controller) Close() {
	c.once.Do(func() {
		c.cancel()
		c.loop.close()
		c.events.close()
	})
}

// Start configures the target and begins a handshake unless one is already
// running or the session is live, in which case only the target changes.
func (c *Controller) Start(url string, pollInterval time.Duration) {
	c.loop.post(func() {
		c.baseURL = url
		if pollInterval > 0 {
			c.pollInterval = pollInterval
		} else {
			c.pollInterval = DefaultPollInterval
		}
		c.dispatch(InputStart)
	})
}

// Stop forcibly ends the session. Every call emits end.
func (c *Controller) Stop() {
	c.loop.post(func() { c.dispatch(InputStop) })
}

// Continue resumes execution and restarts the poller.
func (c *Controller) Continue() {
	c.loop.post(c.resume)
}

// Step executes a single step and restarts the poller.
func (c *Controller) Step() {
	c.loop.post(func() {
		c.command(transport.PathStep)
		c.poller.start()
	})
}

// Pause asks the server to pause. The poller is left as it is.
func (c *Controller) Pause() {
	c.loop.post(func() { c.command(transport.PathPause) })
}

func (c *Controller) resume() {
	c.command(transport.PathContinue)
	c.poller.start()
}

// dispatch feeds an input to the state machine and performs the resulting action
func (c *Controller) dispatch(in Input) {
	from := c.state
	to, action := Transition(from, in)

	if action == ActionBeginHandshake {
		c.generation++
		c.setSessionID(uuid.NewString())
	}
	if to != from {
		c.state = to
		c.stateView.Store(int32(to))
		c.logger.Debug("session state changed",
			zap.String("session_id", c.sessionID),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Stringer("input", in))
		if c.stateHook != nil {
			c.stateHook(c.sessionID, from, to, in)
		}
	}

	switch action {
	case ActionBeginHandshake:
		c.armHandshakeTimeout(c.generation)
		c.probe(c.generation)
	case ActionProbe:
		c.probe(c.generation)
	case ActionGoLive:
		c.deferred.flush(c.sendBreakpoints)
		c.resume()
	case ActionContinue:
		c.resume()
	case ActionEnd:
		c.poller.cancel()
		c.emit(domain.EventEnd)
	}
}

func (c *Controller) setSessionID(id string) {
	c.sessionID = id
	c.idMu.Lock()
	c.idView = id
	c.idMu.Unlock()
}

// probe sends one handshake status probe. Results from an earlier generation
// are ignored.
func (c *Controller) probe(gen uint64) {
	c.request(transport.PathPoll, func(_ gjson.Result, err error) {
		if gen != c.generation {
			return
		}
		if err != nil {
			c.logger.Debug("handshake probe failed", zap.String("session_id", c.sessionID), zap.Error(err))
			c.dispatch(InputProbeFailed)
			return
		}
		c.dispatch(InputProbeSucceeded)
	})
}

// armHandshakeTimeout arms the one-shot guard for generation gen. It is never
// cancelled; once the session is live the check is a no-op.
func (c *Controller) armHandshakeTimeout(gen uint64) {
	c.clock.AfterFunc(c.handshakeTimeout, func() {
		c.loop.post(func() {
			if gen != c.generation {
				return
			}
			c.dispatch(InputTimeout)
		})
	})
}

// command sends an execution command and interprets its response
func (c *Controller) command(path string) {
	c.request(path, func(res gjson.Result, err error) {
		if err != nil {
			c.logger.Debug("command failed", zap.String("path", path), zap.Error(err))
			return
		}
		state := executionOf(res)
		c.logger.Debug("command response", zap.String("path", path), zap.String("execution", string(state)))
		if kind, ok := state.CommandEvent(); ok {
			c.poller.cancel()
			c.emit(kind)
		}
	})
}

// request performs a transport call off the loop and runs cont back on it.
// The base URL is captured when the request is issued.
func (c *Controller) request(path string, cont func(gjson.Result, error)) {
	baseURL := c.baseURL
	go func() {
		res, err := c.shim.Call(c.ctx, baseURL, path)
		c.loop.post(func() {
			if err != nil && c.failureHook != nil {
				c.failureHook(path, err)
			}
			cont(res, err)
		})
	}()
}

// emit delivers an event on a later loop turn
func (c *Controller) emit(kind domain.EventKind) {
	c.loop.post(func() {
		c.events.push(domain.Event{Kind: kind})
	})
}

// executionOf reads the execution field of a status response
func executionOf(res gjson.Result) domain.ExecutionState {
	v := res.Get("execution")
	if v.Type != gjson.String {
		return domain.ExecutionUnknown
	}
	return domain.ParseExecutionState(v.Str)
}
