// Package engine runs the focusfeed filtering loop against one document.
//
// All work happens on the goroutine that calls Run: seeding state from the
// settings store, applying push notifications, reacting to insertions and
// address changes, and every scan. Events are handled one at a time, so a
// scan is never interrupted by another scan and an immediate scan triggered
// by a notification always completes before any later debounced scan starts.
//
// Triggers:
//   - GET_STATE response (or its failure/timeout): seed state, scan now.
//   - GOAL_UPDATED / TOGGLE_CHANGED: update state, scan now.
//   - Document insertion: debounced scan.
//   - Address change seen by the poller: debounced scan.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/metrics"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/scan"
	"github.com/nao1215/focusfeed/internal/state"
	"github.com/nao1215/focusfeed/internal/watch"
)

// DefaultFetchTimeout bounds the wait for a GET_STATE response.
const DefaultFetchTimeout = 5 * time.Second

// notificationBuffer is the capacity of the push notification queue.
const notificationBuffer = 16

var (
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("engine is already running")

	// ErrStopped is returned by calls made after Run has returned.
	ErrStopped = errors.New("engine is stopped")
)

// Engine ties a document, a scan coordinator and a state source together.
type Engine struct {
	id     string
	doc    *dom.Document
	coord  *scan.Coordinator
	source state.Source

	debounce     time.Duration
	pollInterval time.Duration
	fetchTimeout time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	onScan  func(*model.ScanResult)

	// state is owned by the loop goroutine.
	state state.State

	calls   chan func()
	stopped chan struct{}
	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithID sets the engine identifier used in logs. The default is a random UUID.
func WithID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}

// WithDebounce sets the debounce window for insertion and navigation
// triggers. Non-positive values use watch.DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// WithPollInterval sets how often the document address is polled.
// Non-positive values use watch.DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.pollInterval = d
	}
}

// WithFetchTimeout bounds the wait for the initial GET_STATE response.
// Non-positive values use DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithOnScan registers a hook called on the loop goroutine after every scan.
func WithOnScan(fn func(*model.ScanResult)) Option {
	return func(e *Engine) {
		e.onScan = fn
	}
}

// New creates an Engine. It does nothing until Run is called.
func New(doc *dom.Document, coord *scan.Coordinator, source state.Source, opts ...Option) *Engine {
	e := &Engine{
		doc:     doc,
		coord:   coord,
		source:  source,
		state:   state.Default(),
		calls:   make(chan func()),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	if e.fetchTimeout <= 0 {
		e.fetchTimeout = DefaultFetchTimeout
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("engine", e.id)
	return e
}

// ID returns the engine identifier.
func (e *Engine) ID() string {
	return e.id
}

// fetchResult carries the GET_STATE outcome into the loop.
type fetchResult struct {
	state state.State
	err   error
}

// Run executes the loop until ctx is done. It returns nil on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(e.stopped)

	done := make(chan struct{})
	defer close(done)

	signals, unobserve := e.doc.Observe()
	defer unobserve()

	notifications := make(chan state.Message, notificationBuffer)
	unsubscribe := e.source.Subscribe(func(m state.Message) {
		select {
		case notifications <- m:
		case <-done:
		}
	})
	defer unsubscribe()

	fetchCtx, cancelFetch := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancelFetch()
	fetched := make(chan fetchResult, 1)
	go func() {
		s, err := e.source.FetchState(fetchCtx)
		fetched <- fetchResult{state: s, err: err}
	}()

	debouncer := watch.NewDebouncer(e.debounce)
	defer debouncer.Stop()
	poller := watch.NewAddressPoller(e.doc.Location)
	ticker := time.NewTicker(watch.Interval(e.pollInterval))
	defer ticker.Stop()

	// Fields set by a push before the GET_STATE answer arrives are newer
	// than that answer and must not be overwritten by it.
	var goalPushed, togglePushed bool

	e.logger.Info("engine started",
		"location", poller.Last(),
		"debounce", debouncer.Delay(),
		"pollInterval", watch.Interval(e.pollInterval),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", "reason", ctx.Err())
			return nil

		case r := <-fetched:
			fetched = nil
			e.seed(r, goalPushed, togglePushed)
			e.scan("startup")

		case m := <-notifications:
			switch m.Type {
			case state.TypeGoalUpdated:
				goalPushed = true
			case state.TypeToggleChanged:
				togglePushed = true
			}
			if e.apply(m) {
				e.scan(string(m.Type))
			}

		case <-signals:
			debouncer.Schedule()

		case <-ticker.C:
			if addr, changed := poller.Check(); changed {
				e.logger.Debug("address changed", "location", addr)
				debouncer.Schedule()
			}

		case <-debouncer.C():
			debouncer.Fired()
			e.scan("debounce")

		case fn := <-e.calls:
			fn()
		}
	}
}

// seed applies the GET_STATE outcome. Failures keep the current state.
func (e *Engine) seed(r fetchResult, goalPushed, togglePushed bool) {
	if r.err != nil {
		e.metrics.FetchFailed()
		e.logger.Warn("settings store unavailable, keeping current state",
			"error", r.err,
			"goal", e.state.Goal,
			"enabled", e.state.Enabled,
		)
		return
	}

	if !goalPushed {
		e.state.Goal = r.state.Goal
	}
	if !togglePushed {
		e.state.Enabled = r.state.Enabled
	}
	e.logger.Info("state seeded", "goal", e.state.Goal, "enabled", e.state.Enabled)
}

// apply updates state from a push notification and reports whether it was
// understood.
func (e *Engine) apply(m state.Message) bool {
	next, err := e.state.Apply(m)
	if err != nil {
		e.logger.Warn("ignoring notification", "error", err)
		return false
	}
	e.metrics.Notification(string(m.Type))
	e.state = next
	e.logger.Info("state updated", "type", string(m.Type), "goal", next.Goal, "enabled", next.Enabled)
	return true
}

// scan runs one pass against a snapshot of the current state.
func (e *Engine) scan(reason string) *model.ScanResult {
	result := e.coord.ScanSnapshot(e.state.Snapshot())
	e.logger.Debug("scan complete", "reason", reason, "summary", result.Summary())
	if e.onScan != nil {
		e.onScan(result)
	}
	return result
}

// do runs fn on the loop goroutine.
func (e *Engine) do(ctx context.Context, fn func()) error {
	select {
	case e.calls <- fn:
		return nil
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScanNow runs a scan on the loop goroutine and returns its result.
func (e *Engine) ScanNow(ctx context.Context) (*model.ScanResult, error) {
	reply := make(chan *model.ScanResult, 1)
	if err := e.do(ctx, func() { reply <- e.scan("request") }); err != nil {
		return nil, err
	}
	return <-reply, nil
}

// State returns the engine's current goal and enabled flag.
func (e *Engine) State(ctx context.Context) (state.State, error) {
	reply := make(chan state.State, 1)
	if err := e.do(ctx, func() { reply <- e.state }); err != nil {
		return state.State{}, err
	}
	return <-reply, nil
}
