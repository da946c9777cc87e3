package domain

// ViewNode is a source node annotated with everything a renderer needs.
//
// ViewNodes are rebuilt on every recompute but identity-preserved: when none
// of the derived fields changed and the children slice is element-wise the
// same objects as before, the materializer returns the previous *ViewNode
// unchanged. Downstream layers may therefore compare nodes by pointer to skip
// re-rendering unaffected subtrees.
type ViewNode[T any] struct {
	Node[T]

	// Depth is the recursion depth from the roots (roots are 0).
	Depth int `json:"depth"`
	// IsActive is true for the node whose ID equals ViewState.ActiveID.
	IsActive bool `json:"isActive"`
	// IsActiveTrail is true for the active node and every ancestor of it.
	IsActiveTrail bool `json:"isActiveTrail"`
	// IsExpanded is the effective expansion: an explicit override wins,
	// otherwise active-trail membership expands the node by default.
	IsExpanded bool `json:"isExpanded"`

	// Children holds this node's materialized children together with the
	// loading flag of their fetch. Children are present whenever they are
	// loaded, regardless of IsExpanded; visibility is the renderer's call.
	Children Loadable[*ViewNode[T]] `json:"children"`
}

// Tree is the materialized view of the whole data set.
type Tree[T any] struct {
	// Items are the root view nodes, in source order.
	Items []*ViewNode[T] `json:"items"`
	// IsLoading mirrors the root fetch.
	IsLoading bool `json:"isLoading"`
	// Nodes indexes every node materialized during the current source's
	// lifetime by ID. It accumulates and is never pruned: a node stays
	// addressable here even after it is collapsed out of the visible tree.
	Nodes map[string]*ViewNode[T] `json:"-"`
}

// Node returns the materialized node for id, or nil if it was never built.
func (t *Tree[T]) Node(id string) *ViewNode[T] {
	if t == nil {
		return nil
	}
	return t.Nodes[id]
}

// Walk visits the reachable tree in pre-order, loaded children included even
// under collapsed nodes. The visit stops when fn returns false.
func (t *Tree[T]) Walk(fn func(n *ViewNode[T]) bool) {
	if t == nil {
		return
	}
	var walk func(nodes []*ViewNode[T]) bool
	walk = func(nodes []*ViewNode[T]) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !walk(n.Children.Items) {
				return false
			}
		}
		return true
	}
	walk(t.Items)
}

// Flatten returns the visible rows of the tree in pre-order: every root, and
// the children of expanded nodes only. This is the shape list-style renderers
// consume.
func (t *Tree[T]) Flatten() []*ViewNode[T] {
	if t == nil {
		return nil
	}
	var rows []*ViewNode[T]
	var walk func(nodes []*ViewNode[T])
	walk = func(nodes []*ViewNode[T]) {
		for _, n := range nodes {
			rows = append(rows, n)
			if n.IsExpanded {
				walk(n.Children.Items)
			}
		}
	}
	walk(t.Items)
	return rows
}
