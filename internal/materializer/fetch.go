package materializer

import (
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// fetchRootsLocked issues the asynchronous root fetch for the current source.
func (m *Materializer[T]) fetchRootsLocked() {
	source := m.source
	epoch := m.epoch
	m.inflight++
	m.emitFetchStart(domain.FetchRoots, nil)

	go func() {
		start := time.Now()
		items, err := source.Children(m.ctx, ports.RootID)
		took := time.Since(start)

		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			m.emitStaleDrop(domain.FetchRoots, nil, took)
			return
		}
		m.inflight--
		if err != nil {
			// Not retried: the root set stays loading forever.
			m.logger.Warn("root fetch failed", "err", err)
			m.emitFetchCommitLocked(domain.FetchRoots, nil, took, err)
			m.mu.Unlock()
			m.notify()
			return
		}
		m.roots = domain.Loadable[domain.Node[T]]{Items: items}
		for _, root := range items {
			if _, ok := m.trails[root.ID]; !ok {
				m.trails[root.ID] = []domain.Node[T]{root}
			}
		}
		m.emitFetchCommitLocked(domain.FetchRoots, nil, took, nil)
		m.mu.Unlock()
		m.notify()
	}()
}

// fetchTrailLocked resolves the ancestor path of the active node. On success
// every suffix of the returned trail is registered under its head's id, so
// ancestor expand-state resolves without further round trips.
func (m *Materializer[T]) fetchTrailLocked(id string) {
	source := m.source
	epoch := m.epoch
	m.inflight++
	m.emitFetchStart(domain.FetchTrail, []string{id})

	go func() {
		start := time.Now()
		trail, err := source.Trail(m.ctx, id)
		took := time.Since(start)

		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			m.emitStaleDrop(domain.FetchTrail, []string{id}, took)
			return
		}
		m.inflight--
		if err != nil {
			// Stays pending so it is never retried.
			m.logger.Warn("trail fetch failed", "id", id, "err", err)
			m.emitFetchCommitLocked(domain.FetchTrail, []string{id}, took, err)
			m.mu.Unlock()
			m.notify()
			return
		}
		for i := range trail {
			if _, ok := m.trails[trail[i].ID]; !ok {
				m.trails[trail[i].ID] = trail[i:]
			}
		}
		delete(m.pendingTrails, id)
		m.emitFetchCommitLocked(domain.FetchTrail, []string{id}, took, nil)
		m.mu.Unlock()
		m.notify()
	}()
}

// fetchChildrenLocked issues one batch fetch for the given ids. The batch
// commits to the children table atomically: no tree snapshot ever shows part
// of it loaded and the rest still loading.
func (m *Materializer[T]) fetchChildrenLocked(ids []string) {
	source := m.source
	epoch := m.epoch
	m.inflight++
	for _, id := range ids {
		m.pendingChildren[id] = true
	}
	m.emitFetchStart(domain.FetchChildren, ids)

	done := make(chan struct{})
	if m.transition <= 0 {
		m.placeholdersLocked(ids)
	} else {
		timer := time.AfterFunc(m.transition, func() {
			select {
			case <-done:
				// Results arrived first: the loading flash is suppressed.
				return
			default:
			}
			m.mu.Lock()
			if epoch != m.epoch {
				m.mu.Unlock()
				return
			}
			m.placeholdersLocked(ids)
			m.mu.Unlock()
			m.notify()
		})
		m.timers[timer] = struct{}{}
		go func() {
			<-done
			timer.Stop()
			m.mu.Lock()
			delete(m.timers, timer)
			m.mu.Unlock()
		}()
	}

	go func() {
		defer close(done)
		start := time.Now()

		results := make([][]domain.Node[T], len(ids))
		g, ctx := errgroup.WithContext(m.ctx)
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				items, err := source.Children(ctx, id)
				if err != nil {
					return err
				}
				results[i] = items
				return nil
			})
		}
		err := g.Wait()
		took := time.Since(start)

		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			m.emitStaleDrop(domain.FetchChildren, ids, took)
			return
		}
		m.inflight--
		if err != nil {
			// All-or-nothing: the whole batch stays loading and is never
			// retried.
			m.logger.Warn("children fetch failed", "ids", ids, "err", err)
			m.placeholdersLocked(ids)
			m.emitFetchCommitLocked(domain.FetchChildren, ids, took, err)
			m.mu.Unlock()
			m.notify()
			return
		}
		for i, id := range ids {
			m.children[id] = domain.Loadable[domain.Node[T]]{Items: results[i]}
			delete(m.pendingChildren, id)
			m.seedChildTrailsLocked(id, results[i])
		}
		m.emitFetchCommitLocked(domain.FetchChildren, ids, took, nil)
		m.mu.Unlock()
		m.notify()
	}()
}

// placeholdersLocked records a loading entry for every id of a batch that has
// not resolved yet.
func (m *Materializer[T]) placeholdersLocked(ids []string) {
	for _, id := range ids {
		if _, ok := m.children[id]; !ok {
			m.children[id] = domain.Loadable[domain.Node[T]]{IsLoading: true}
		}
	}
}

// seedChildTrailsLocked registers the trail of every freshly loaded child as
// the child prepended to its parent's trail, so active-trail resolution works
// for nodes discovered later without extra round trips.
func (m *Materializer[T]) seedChildTrailsLocked(parentID string, children []domain.Node[T]) {
	parentTrail, ok := m.trails[parentID]
	if !ok {
		// Parent was expanded before anything linked it to a root (an
		// explicit override on a never-seen id). Its own trail resolves via
		// the trail fetch if it ever becomes active.
		return
	}
	for _, child := range children {
		if _, seen := m.trails[child.ID]; seen {
			continue
		}
		trail := make([]domain.Node[T], 0, len(parentTrail)+1)
		trail = append(trail, child)
		trail = append(trail, parentTrail...)
		m.trails[child.ID] = trail
	}
}
