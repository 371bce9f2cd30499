package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/hactl/internal/api"
)

// ErrAlreadyStarted is returned by Start on a running controller.
var ErrAlreadyStarted = errors.New("controller already started")

const defaultInterval = 5 * time.Second

// Reader fetches one snapshot of a remote resource.
type Reader[T any] func(ctx context.Context) (T, error)

// Lifecycle is the mount/unmount surface a screen uses.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop()
}

// TickerFunc creates the tick source of a running controller. The returned
// stop function releases it.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

// Options configure a Controller.
type Options struct {
	Logger *slog.Logger
	// OnSettle is called, outside the lock, after every applied state change.
	OnSettle func()
	// NewTicker replaces time.NewTicker, mainly for tests.
	NewTicker TickerFunc
}

// Controller keeps one ViewState in sync with a remote resource: it polls on
// an interval, never overlaps reads, keeps the last good data on failure and
// drops anything that settles after Stop.
type Controller[T any] struct {
	read      Reader[T]
	interval  time.Duration
	logger    *slog.Logger
	onSettle  func()
	newTicker TickerFunc

	mu     sync.Mutex
	state  ViewState[T]
	active bool
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// inFlight spans runs: a read from a stopped run still counts until it
	// returns, so a restart never overlaps it.
	inFlight bool
	// pollOnSettle defers a restart's first poll until the straggler returns.
	pollOnSettle bool
}

var _ Lifecycle = (*Controller[struct{}])(nil)

// NewController builds a stopped controller for read.
func NewController[T any](name string, read Reader[T], interval time.Duration, opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	newTicker := opts.NewTicker
	if newTicker == nil {
		newTicker = realTicker
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Controller[T]{
		read:      read,
		interval:  interval,
		logger:    logger.With("view", name),
		onSettle:  opts.OnSettle,
		newTicker: newTicker,
	}
}

// Start polls once immediately and then on every tick until Stop or until ctx
// is done. When a read from a previous run is still outstanding the first poll
// waits for it to return.
func (c *Controller[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := c.newTicker(c.interval)
	c.active = true
	c.gen++
	c.state.Loading = c.inFlight
	c.pollOnSettle = c.inFlight
	c.ctx = runCtx
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Debug("sync started", "interval", c.interval)
	c.poll()

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-runCtx.Done():
				c.expire(done)
				return
			case <-ticks:
				c.poll()
			}
		}
	}()
	return nil
}

// Stop cancels future ticks and waits for the tick loop to exit. A read that
// is still in flight is left to finish and its result is discarded. Stop on a
// stopped controller does nothing.
func (c *Controller[T]) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.state.Loading = false
	c.pollOnSettle = false
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.ctx = nil, nil, nil
	c.mu.Unlock()

	cancel()
	<-done
	c.logger.Debug("sync stopped")
}

// expire marks the run owning done as stopped after its parent context ended,
// so a later Start begins a fresh run.
func (c *Controller[T]) expire(done chan struct{}) {
	c.mu.Lock()
	if !c.active || c.done != done {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.state.Loading = false
	c.pollOnSettle = false
	cancel := c.cancel
	c.cancel, c.done, c.ctx = nil, nil, nil
	c.mu.Unlock()

	cancel()
	c.logger.Debug("sync ended with its context")
}

// Active reports whether the controller is between Start and Stop.
func (c *Controller[T]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Refresh requests an out-of-band poll. It returns false when the controller
// is stopped or a poll is already in flight.
func (c *Controller[T]) Refresh() bool {
	return c.poll()
}

// State returns a copy of the current view state.
func (c *Controller[T]) State() ViewState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch runs one command and merges its outcome into the command errors
// under key. It does not touch Data and does not block the poll loop. Outcomes
// that arrive after Stop are returned but not applied.
func (c *Controller[T]) Dispatch(ctx context.Context, key string, command func(context.Context) api.Outcome) api.Outcome {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	outcome := command(ctx)
	if outcome.Success() {
		c.logger.Info("command accepted", "command", key, "status", outcome.Status)
	} else {
		c.logger.Warn("command failed", "command", key, "status", outcome.Status, "error", outcome.Err)
	}

	c.mu.Lock()
	if !c.active || c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("dropping outcome for stopped view", "command", key)
		return outcome
	}
	c.state.mergeOutcome(key, outcome)
	c.mu.Unlock()

	c.notify()
	return outcome
}

// poll starts one read unless one is already in flight.
func (c *Controller[T]) poll() bool {
	c.mu.Lock()
	if !c.active || c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	c.state.Loading = true
	gen, ctx := c.gen, c.ctx
	c.mu.Unlock()

	go func() {
		data, err := c.read(ctx)
		c.settle(gen, data, err)
	}()
	return true
}

func (c *Controller[T]) settle(gen uint64, data T, err error) {
	c.mu.Lock()
	c.inFlight = false
	if !c.active || c.gen != gen {
		retry := c.active && c.pollOnSettle
		c.pollOnSettle = false
		c.mu.Unlock()
		c.logger.Debug("dropping stale poll result", "error", err)
		if retry {
			c.poll()
		}
		return
	}
	now := time.Now()
	if err != nil {
		c.state.settleFailure(err, now)
		failures := c.state.ConsecutiveFailures
		c.mu.Unlock()
		c.logger.Warn("poll failed", "error", err, "consecutive_failures", failures)
	} else {
		c.state.settleSuccess(data, now)
		c.mu.Unlock()
	}
	c.notify()
}

func (c *Controller[T]) notify() {
	if c.onSettle != nil {
		c.onSettle()
	}
}

func realTicker(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}
