package materializer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// stubSource is a scriptable TreeSource for white-box tests.
type stubSource struct {
	children      func(ctx context.Context, id string) ([]domain.Node[string], error)
	trail         func(ctx context.Context, id string) ([]domain.Node[string], error)
	childrenCalls atomic.Int64
}

func (s *stubSource) Children(ctx context.Context, id string) ([]domain.Node[string], error) {
	s.childrenCalls.Add(1)
	return s.children(ctx, id)
}

func (s *stubSource) Trail(ctx context.Context, id string) ([]domain.Node[string], error) {
	return s.trail(ctx, id)
}

func node(id string) domain.Node[string] {
	return domain.Node[string]{ID: id, Data: id}
}

// flatSource serves root -> mid -> leaf.
func flatSource() *stubSource {
	return &stubSource{
		children: func(_ context.Context, id string) ([]domain.Node[string], error) {
			switch id {
			case "":
				return []domain.Node[string]{node("root")}, nil
			case "root":
				return []domain.Node[string]{node("mid")}, nil
			case "mid":
				return []domain.Node[string]{node("leaf")}, nil
			default:
				return nil, nil
			}
		},
		trail: func(_ context.Context, id string) ([]domain.Node[string], error) {
			switch id {
			case "leaf":
				return []domain.Node[string]{node("leaf"), node("mid"), node("root")}, nil
			case "mid":
				return []domain.Node[string]{node("mid"), node("root")}, nil
			default:
				return []domain.Node[string]{node(id)}, nil
			}
		},
	}
}

func settle(t *testing.T, m *Materializer[string], source *stubSource, state domain.ViewState) *domain.Tree[string] {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		tree := m.Materialize(source, state)
		if m.InFlight() == 0 {
			return tree
		}
		select {
		case <-deadline:
			t.Fatal("materializer never settled")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestMaterialize_SeedsSuffixTrails(t *testing.T) {
	source := flatSource()
	m := New[string]()
	defer m.Close()

	state := domain.NewViewState()
	state.ActiveID = "leaf"
	settle(t, m, source, state)

	m.mu.Lock()
	defer m.mu.Unlock()

	wantLens := map[string]int{"leaf": 3, "mid": 2, "root": 1}
	for id, want := range wantLens {
		trail, ok := m.trails[id]
		if !ok {
			t.Errorf("trail for %q not registered", id)
			continue
		}
		if len(trail) != want {
			t.Errorf("trail for %q has length %d, want %d", id, len(trail), want)
		}
		if trail[0].ID != id {
			t.Errorf("trail for %q starts at %q", id, trail[0].ID)
		}
	}
}

func TestMaterialize_SeedsChildTrailsOnCommit(t *testing.T) {
	source := flatSource()
	m := New[string]()
	defer m.Close()

	state := domain.NewViewState()
	state.Expanded["root"] = true
	settle(t, m, source, state)

	m.mu.Lock()
	defer m.mu.Unlock()

	trail, ok := m.trails["mid"]
	if !ok {
		t.Fatal("child trail for mid was not seeded after its parent's children committed")
	}
	if len(trail) != 2 || trail[0].ID != "mid" || trail[1].ID != "root" {
		t.Errorf("trail for mid = %v", trailIDs(trail))
	}
}

func trailIDs(trail []domain.Node[string]) []string {
	ids := make([]string, len(trail))
	for i, n := range trail {
		ids[i] = n.ID
	}
	return ids
}

func TestMaterialize_DeltaOnlyFetching(t *testing.T) {
	source := flatSource()
	m := New[string]()
	defer m.Close()

	state := domain.NewViewState()
	state.Expanded["root"] = true
	settle(t, m, source, state)

	calls := source.childrenCalls.Load()

	// Recomputing with the same state must not refetch anything.
	settle(t, m, source, state)
	settle(t, m, source, state)

	if got := source.childrenCalls.Load(); got != calls {
		t.Errorf("children calls grew from %d to %d on no-op recomputes", calls, got)
	}
}

func TestMaterialize_StaleResultsDropped(t *testing.T) {
	release := make(chan struct{})
	old := &stubSource{
		children: func(ctx context.Context, id string) ([]domain.Node[string], error) {
			if id == "" {
				select {
				case <-release:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return []domain.Node[string]{node("stale")}, nil
			}
			return nil, nil
		},
		trail: func(_ context.Context, id string) ([]domain.Node[string], error) {
			return []domain.Node[string]{node(id)}, nil
		},
	}

	var staleDrops atomic.Int64
	m := New[string](WithHooks[string](domain.LifecycleHooks{
		OnStaleDrop: func(context.Context, *domain.FetchEvent) { staleDrops.Add(1) },
	}))
	defer m.Close()

	state := domain.NewViewState()
	m.Materialize(old, state) // old root fetch hangs on release

	fresh := flatSource()
	tree := settle(t, m, fresh, state)

	// Let the superseded fetch resolve against the bumped epoch.
	close(release)
	deadline := time.After(2 * time.Second)
	for staleDrops.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("stale drop hook never fired")
		case <-time.After(time.Millisecond):
		}
	}

	tree = m.Materialize(fresh, state)
	if tree.Node("stale") != nil {
		t.Error("stale root leaked past the epoch guard")
	}
	if tree.Node("root") == nil {
		t.Error("fresh roots missing")
	}
}

func TestMaterialize_AllNodesAccumulate(t *testing.T) {
	source := flatSource()
	m := New[string]()
	defer m.Close()

	state := domain.NewViewState()
	state.Expanded["root"] = true
	settle(t, m, source, state)

	// Collapse root: mid disappears from the visible walk but stays
	// addressable.
	state = domain.WithExpanded(state, "root", false)
	tree := settle(t, m, source, state)

	if tree.Node("mid") == nil {
		t.Error("collapsed node should stay in the accumulated index")
	}
	visible := tree.Flatten()
	for _, row := range visible {
		if row.ID == "mid" {
			t.Error("mid should not be a visible row while root is collapsed")
		}
	}
}

func TestUnchanged(t *testing.T) {
	child := &domain.ViewNode[string]{}
	base := func() *domain.ViewNode[string] {
		return &domain.ViewNode[string]{
			Depth:      1,
			IsExpanded: true,
			Children: domain.Loadable[*domain.ViewNode[string]]{
				Items: []*domain.ViewNode[string]{child},
			},
		}
	}

	t.Run("Identical Derived Fields Match", func(t *testing.T) {
		if !unchanged(base(), base()) {
			t.Error("expected match")
		}
	})

	t.Run("Flag Change Breaks Match", func(t *testing.T) {
		b := base()
		b.IsActiveTrail = true
		if unchanged(base(), b) {
			t.Error("IsActiveTrail change must break the match")
		}
	})

	t.Run("Child Identity Change Breaks Match", func(t *testing.T) {
		b := base()
		b.Children.Items = []*domain.ViewNode[string]{{}}
		if unchanged(base(), b) {
			t.Error("a different child pointer must break the match")
		}
	})

	t.Run("Loading Flag Breaks Match", func(t *testing.T) {
		b := base()
		b.Children.IsLoading = true
		if unchanged(base(), b) {
			t.Error("children loading change must break the match")
		}
	})
}
