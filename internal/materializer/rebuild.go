package materializer

import (
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// rebuildLocked reconstructs the annotated view tree from the current tables.
//
// The walk is pure: roots, then children from the children table, depth-first.
// A node's previous *ViewNode is reused whenever none of its derived fields
// changed and the freshly built children slice is element-wise the same
// objects as before. That pointer stability for unaffected subtrees is the
// performance contract of this component.
func (m *Materializer[T]) rebuildLocked(state domain.ViewState) *domain.Tree[T] {
	trailSet := m.activeTrailLocked(state.ActiveID)
	next := make(map[string]*domain.ViewNode[T], len(m.prev))
	reused := 0

	var build func(n domain.Node[T], depth int) *domain.ViewNode[T]
	build = func(n domain.Node[T], depth int) *domain.ViewNode[T] {
		loaded := m.children[n.ID]
		var items []*domain.ViewNode[T]
		if len(loaded.Items) > 0 {
			items = make([]*domain.ViewNode[T], 0, len(loaded.Items))
			for _, child := range loaded.Items {
				items = append(items, build(child, depth+1))
			}
		}

		onTrail := trailSet[n.ID]
		candidate := domain.ViewNode[T]{
			Node:          n,
			Depth:         depth,
			IsActive:      n.ID == state.ActiveID,
			IsActiveTrail: onTrail,
			IsExpanded:    state.Effective(n.ID, onTrail),
			Children: domain.Loadable[*domain.ViewNode[T]]{
				IsLoading: loaded.IsLoading,
				Items:     items,
			},
		}

		if prev, ok := m.prev[n.ID]; ok && unchanged(prev, &candidate) {
			next[n.ID] = prev
			reused++
			return prev
		}
		vn := new(domain.ViewNode[T])
		*vn = candidate
		next[n.ID] = vn
		return vn
	}

	var roots []*domain.ViewNode[T]
	if len(m.roots.Items) > 0 {
		roots = make([]*domain.ViewNode[T], 0, len(m.roots.Items))
		for _, root := range m.roots.Items {
			roots = append(roots, build(root, 0))
		}
	}

	m.prev = next
	for id, vn := range next {
		m.all[id] = vn
	}
	// Snapshot the accumulated index so consumers can read the tree while
	// later recomputes mutate the internal table.
	nodes := make(map[string]*domain.ViewNode[T], len(m.all))
	for id, vn := range m.all {
		nodes[id] = vn
	}

	m.emitRecomputeLocked(len(next), reused)

	return &domain.Tree[T]{
		Items:     roots,
		IsLoading: m.roots.IsLoading,
		Nodes:     nodes,
	}
}

// unchanged reports whether the candidate carries exactly the derived fields
// and child identities of the previous build. Payloads are not compared: an
// id never changes payload within one source's lifetime.
func unchanged[T any](prev, candidate *domain.ViewNode[T]) bool {
	if prev.Depth != candidate.Depth ||
		prev.IsActive != candidate.IsActive ||
		prev.IsActiveTrail != candidate.IsActiveTrail ||
		prev.IsExpanded != candidate.IsExpanded ||
		prev.Children.IsLoading != candidate.Children.IsLoading {
		return false
	}
	if len(prev.Children.Items) != len(candidate.Children.Items) {
		return false
	}
	for i := range prev.Children.Items {
		if prev.Children.Items[i] != candidate.Children.Items[i] {
			return false
		}
	}
	return true
}
