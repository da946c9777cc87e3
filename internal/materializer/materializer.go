// Package materializer owns the asynchronous loading lifecycle of the tree:
// root fetching, active-trail resolution, batched on-demand child loading
// with a debounced loading indicator, and the identity-preserving rebuild of
// the annotated view tree.
package materializer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/internal/logging"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

// Materializer turns a TreeSource plus a ViewState into a domain.Tree.
//
// All internal tables are guarded by one mutex; asynchronous fetches run in
// goroutines and commit under that lock. Results carry the source epoch they
// were issued under and are dropped if the source was swapped before they
// resolved.
type Materializer[T any] struct {
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	transition time.Duration
	onChange   func()

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	source         ports.TreeSource[T]
	epoch          uint64
	inflight       int
	rootsRequested bool
	roots          domain.Loadable[domain.Node[T]]
	children       map[string]domain.Loadable[domain.Node[T]]
	trails         map[string][]domain.Node[T]
	// pendingChildren / pendingTrails hold ids with a fetch in flight, or
	// that failed; failed ids stay pending so they are never retried.
	pendingChildren map[string]bool
	pendingTrails   map[string]bool
	timers          map[*time.Timer]struct{}

	prev map[string]*domain.ViewNode[T]
	all  map[string]*domain.ViewNode[T]
}

// Option configures a Materializer.
type Option[T any] func(*Materializer[T])

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(m *Materializer[T]) {
		m.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks[T any](hooks domain.LifecycleHooks) Option[T] {
	return func(m *Materializer[T]) {
		m.hooks = hooks
	}
}

// WithLoadingTransition delays the loading placeholder for child fetches by d.
// Batches that commit within the delay never show a loading state. Zero (the
// default) records placeholders immediately.
func WithLoadingTransition[T any](d time.Duration) Option[T] {
	return func(m *Materializer[T]) {
		m.transition = d
	}
}

// WithOnChange registers the callback invoked, outside the lock, whenever an
// asynchronous result commits. The owner reacts by calling Materialize again.
func WithOnChange[T any](fn func()) Option[T] {
	return func(m *Materializer[T]) {
		m.onChange = fn
	}
}

// WithContext sets the base context for all fetches. Defaults to Background.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(m *Materializer[T]) {
		m.ctx = ctx
	}
}

// New creates a Materializer. No fetch is issued until the first Materialize.
func New[T any](opts ...Option[T]) *Materializer[T] {
	m := &Materializer[T]{
		logger: logging.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(m.ctx)
	m.resetTablesLocked()
	return m
}

// Close cancels in-flight fetches and stops pending placeholder timers.
func (m *Materializer[T]) Close() {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimersLocked()
}

// InFlight reports the number of outstanding asynchronous fetch batches.
// Failed batches do not count: they have resolved, even though their loading
// flags stay set.
func (m *Materializer[T]) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight
}

// Materialize recomputes the annotated tree for the given source and state.
//
// If source differs (by identity) from the previously seen one, every
// internal table is reset before any further logic runs. Missing data is
// scheduled for fetching; the returned tree reflects what is known right now.
func (m *Materializer[T]) Materialize(source ports.TreeSource[T], state domain.ViewState) *domain.Tree[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if source != m.source {
		m.resetLocked(source)
	}

	if !m.rootsRequested && m.source != nil {
		m.rootsRequested = true
		m.fetchRootsLocked()
	}

	if id := state.ActiveID; id != "" {
		if _, known := m.trails[id]; !known && !m.pendingTrails[id] {
			m.pendingTrails[id] = true
			m.fetchTrailLocked(id)
		}
	}

	if batch := m.childBatchLocked(state); len(batch) > 0 {
		m.fetchChildrenLocked(batch)
	}

	return m.rebuildLocked(state)
}

// resetLocked swaps the source and clears every table. Results still in
// flight against the old source are discarded at commit time by the epoch
// guard.
func (m *Materializer[T]) resetLocked(source ports.TreeSource[T]) {
	m.source = source
	m.epoch++
	m.inflight = 0
	m.stopTimersLocked()
	m.resetTablesLocked()
	m.emitSourceReset()
	m.logger.Debug("tree source attached, tables reset", "epoch", m.epoch)
}

func (m *Materializer[T]) resetTablesLocked() {
	m.rootsRequested = false
	m.roots = domain.Loadable[domain.Node[T]]{IsLoading: true}
	m.children = make(map[string]domain.Loadable[domain.Node[T]])
	m.trails = make(map[string][]domain.Node[T])
	m.pendingChildren = make(map[string]bool)
	m.pendingTrails = make(map[string]bool)
	m.timers = make(map[*time.Timer]struct{})
	m.prev = make(map[string]*domain.ViewNode[T])
	m.all = make(map[string]*domain.ViewNode[T])
}

func (m *Materializer[T]) stopTimersLocked() {
	for t := range m.timers {
		t.Stop()
	}
	m.timers = make(map[*time.Timer]struct{})
}

// activeTrailLocked returns the set of ids on the active node's trail, empty
// while the trail is unknown.
func (m *Materializer[T]) activeTrailLocked(activeID string) map[string]bool {
	trail, ok := m.trails[activeID]
	if activeID == "" || !ok {
		return nil
	}
	set := make(map[string]bool, len(trail))
	for _, n := range trail {
		set[n.ID] = true
	}
	return set
}

// childBatchLocked computes the ids whose children must be fetched now:
// explicitly expanded ids plus the active trail, minus everything already
// loaded or in flight.
func (m *Materializer[T]) childBatchLocked(state domain.ViewState) []string {
	needs := func(id string) bool {
		if _, loaded := m.children[id]; loaded {
			return false
		}
		return !m.pendingChildren[id]
	}

	seen := make(map[string]bool)
	var batch []string
	for id, expanded := range state.Expanded {
		if expanded && needs(id) && !seen[id] {
			seen[id] = true
			batch = append(batch, id)
		}
	}
	for id := range m.activeTrailLocked(state.ActiveID) {
		if needs(id) && !seen[id] {
			seen[id] = true
			batch = append(batch, id)
		}
	}
	sort.Strings(batch)
	return batch
}

// notify runs the owner's change callback. Must be called without the lock.
func (m *Materializer[T]) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}
