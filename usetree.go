package usetree

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/internal/logging"
	"github.com/RobbyUitbeijerse/use-tree/internal/materializer"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

// Engine is the high-level entry point for the use-tree library.
// It wraps the internal materializer, owns the canonical view state when no
// external binding does, and exposes the controller operations that rewrite
// that state.
type Engine[T any] struct {
	logger *slog.Logger
	mat    *materializer.Materializer[T]

	mu      sync.Mutex
	source  ports.TreeSource[T]
	state   domain.ViewState
	tree    *domain.Tree[T]
	changed chan struct{}

	stateListeners []func(domain.ViewState)
	treeListeners  []func(*domain.Tree[T])
	watchers       map[chan *domain.Tree[T]]struct{}
}

// Option defines a functional option for configuring the Engine.
type Option[T any] func(*engineConfig[T])

type engineConfig[T any] struct {
	logger         *slog.Logger
	hooks          domain.LifecycleHooks
	transition     time.Duration
	ctx            context.Context
	state          domain.ViewState
	stateListeners []func(domain.ViewState)
	treeListeners  []func(*domain.Tree[T])
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *engineConfig[T]) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks[T any](hooks domain.LifecycleHooks) Option[T] {
	return func(c *engineConfig[T]) {
		c.hooks = hooks
	}
}

// WithLoadingTransition delays the per-node loading indicator by d, so child
// fetches that resolve within the delay never flash a loading state.
// Default is zero: the indicator appears immediately.
func WithLoadingTransition[T any](d time.Duration) Option[T] {
	return func(c *engineConfig[T]) {
		c.transition = d
	}
}

// WithContext sets the base context for all fetches issued by the engine.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(c *engineConfig[T]) {
		c.ctx = ctx
	}
}

// WithInitialState seeds the view state (uncontrolled-with-default binding).
func WithInitialState[T any](state domain.ViewState) Option[T] {
	return func(c *engineConfig[T]) {
		c.state = state
	}
}

// WithStateListener registers a callback fired whenever the view state is
// replaced. Listeners run synchronously on the update path and must not call
// back into the engine.
func WithStateListener[T any](fn func(domain.ViewState)) Option[T] {
	return func(c *engineConfig[T]) {
		c.stateListeners = append(c.stateListeners, fn)
	}
}

// WithTreeListener registers a callback fired with every materialized
// snapshot, including intermediate loading states. Listeners run
// synchronously and must not call back into the engine; use Watch for a
// channel-based, latest-wins feed instead.
func WithTreeListener[T any](fn func(*domain.Tree[T])) Option[T] {
	return func(c *engineConfig[T]) {
		c.treeListeners = append(c.treeListeners, fn)
	}
}

// New initializes an Engine attached to the given source and issues the root
// fetch. The zero value of T must be meaningful to consumers while payloads
// load; the engine itself never inspects it.
func New[T any](source ports.TreeSource[T], opts ...Option[T]) *Engine[T] {
	cfg := &engineConfig[T]{
		ctx:   context.Background(),
		state: domain.NewViewState(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	e := &Engine[T]{
		logger:         cfg.logger,
		source:         source,
		state:          cfg.state,
		changed:        make(chan struct{}),
		stateListeners: cfg.stateListeners,
		treeListeners:  cfg.treeListeners,
		watchers:       make(map[chan *domain.Tree[T]]struct{}),
	}
	e.mat = materializer.New(
		materializer.WithLogger[T](cfg.logger),
		materializer.WithHooks[T](cfg.hooks),
		materializer.WithLoadingTransition[T](cfg.transition),
		materializer.WithContext[T](cfg.ctx),
		materializer.WithOnChange[T](e.refresh),
	)

	e.mu.Lock()
	e.recomputeLocked()
	e.mu.Unlock()
	return e
}

// Close cancels in-flight fetches and releases timers. The last materialized
// tree stays readable.
func (e *Engine[T]) Close() {
	e.mat.Close()
}

// Tree returns the latest materialized snapshot.
func (e *Engine[T]) Tree() *domain.Tree[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// State returns the current view state. The returned value is a snapshot;
// callers must not mutate its Expanded map.
func (e *Engine[T]) State() domain.ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetSource swaps the data source. If the new source differs by identity from
// the current one, all cached data resets and in-flight results against the
// old source are discarded when they resolve.
func (e *Engine[T]) SetSource(source ports.TreeSource[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = source
	e.recomputeLocked()
}

// Watch returns a channel carrying materialized snapshots. The channel holds
// at most the latest snapshot: a slow consumer sees the freshest tree, not
// every intermediate one. The channel is abandoned when ctx is done.
func (e *Engine[T]) Watch(ctx context.Context) <-chan *domain.Tree[T] {
	ch := make(chan *domain.Tree[T], 1)

	e.mu.Lock()
	e.watchers[ch] = struct{}{}
	if e.tree != nil {
		ch <- e.tree
	}
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.watchers, ch)
		e.mu.Unlock()
	}()
	return ch
}

// WaitIdle blocks until no fetch is in flight, or ctx is done. A tree whose
// source failed counts as idle: failed fetches resolve, they just leave their
// loading flags set.
func (e *Engine[T]) WaitIdle(ctx context.Context) error {
	for {
		e.mu.Lock()
		ch := e.changed
		idle := e.mat.InFlight() == 0
		e.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// refresh recomputes after an asynchronous result committed.
func (e *Engine[T]) refresh() {
	e.mu.Lock()
	e.recomputeLocked()
	e.mu.Unlock()
}

// recomputeLocked rematerializes the tree for the current source and state
// and publishes the snapshot.
func (e *Engine[T]) recomputeLocked() {
	e.tree = e.mat.Materialize(e.source, e.state)

	// Wake WaitIdle callers.
	close(e.changed)
	e.changed = make(chan struct{})

	for ch := range e.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- e.tree
	}
	for _, fn := range e.treeListeners {
		fn(e.tree)
	}
}
