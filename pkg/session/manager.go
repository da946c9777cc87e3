package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/RobbyUitbeijerse/use-tree/internal/logging"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates view-state access, ensuring safe concurrent updates to
// the same key. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	onChange func(key string, state domain.ViewState)
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking, for bindings replicated across
// processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithOnChange registers a notification fired after a state is replaced and
// persisted. It runs outside the key's lock.
func WithOnChange(fn func(key string, state domain.ViewState)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager backed by the given store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must Lock the entry.mu and call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Load retrieves the view state for a key.
func (m *Manager) Load(ctx context.Context, key string) (domain.ViewState, error) {
	var state domain.ViewState
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, key)
		return err
	})
	return state, err
}

// LoadOrInit tries to load a key's state; a missing key yields a fresh empty
// state that is persisted immediately to reserve the key.
func (m *Manager) LoadOrInit(ctx context.Context, key string) (domain.ViewState, error) {
	var state domain.ViewState
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStateNotFound) {
			return fmt.Errorf("failed to check state existence: %w", err)
		}

		state = domain.NewViewState()
		if err := m.store.Save(ctx, key, state); err != nil {
			return fmt.Errorf("failed to initialize state: %w", err)
		}
		return nil
	})
	return state, err
}

// Update applies a transform to the key's state under its lock, persists the
// result, and returns it. A missing key starts from an empty state.
func (m *Manager) Update(ctx context.Context, key string, transform domain.Transform) (domain.ViewState, error) {
	var next domain.ViewState
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, key)
		if errors.Is(err, domain.ErrStateNotFound) {
			current = domain.NewViewState()
		} else if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}

		next = transform(current)
		if err := m.store.Save(ctx, key, next); err != nil {
			return fmt.Errorf("failed to persist state: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ViewState{}, err
	}
	if m.onChange != nil {
		m.onChange(key, next)
	}
	return next, nil
}

// Save persists the state for a key.
func (m *Manager) Save(ctx context.Context, key string, state domain.ViewState) error {
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, state)
	})
	if err == nil && m.onChange != nil {
		m.onChange(key, state)
	}
	return err
}

// Delete removes the state for a key.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes fn while holding the lock for the key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
