package usetree

import (
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// Controller is the state-mutation surface of the engine. Every operation is
// a pure transform over the view state applied through UpdateState; there is
// no transition graph, only field-level merge rules.
type Controller interface {
	// UpdateState applies a transform to the canonical view state and
	// recomputes the tree. It is the primitive every other operation uses.
	UpdateState(transform domain.Transform)

	// SetExpanded records an explicit expand/collapse override for id,
	// ignoring the current derived state.
	SetExpanded(id string, expanded bool)

	// ToggleExpanded flips the node's current effective expansion. Toggling
	// an implicitly expanded active-trail node records an explicit collapse.
	ToggleExpanded(id string)

	// SetAllExpanded expands every given id that is known to the tree;
	// unknown ids are ignored silently.
	SetAllExpanded(ids ...string)

	// SetActiveID replaces the active node. Empty clears it.
	SetActiveID(id string)
}

var _ Controller = (*Engine[any])(nil)

// UpdateState applies a transform to the view state, notifies state
// listeners, and recomputes the tree.
func (e *Engine[T]) UpdateState(transform domain.Transform) {
	e.mu.Lock()
	e.state = transform(e.state)
	state := e.state
	for _, fn := range e.stateListeners {
		fn(state)
	}
	e.recomputeLocked()
	e.mu.Unlock()
}

// SetExpanded records an explicit override for id.
func (e *Engine[T]) SetExpanded(id string, expanded bool) {
	e.UpdateState(func(s domain.ViewState) domain.ViewState {
		return domain.WithExpanded(s, id, expanded)
	})
}

// ToggleExpanded flips the current effective expansion of id. The effective
// value is read from the materialized tree, so toggling an active-trail node
// that was never explicitly touched collapses it.
func (e *Engine[T]) ToggleExpanded(id string) {
	e.UpdateState(func(s domain.ViewState) domain.ViewState {
		return domain.WithToggled(s, id, e.onActiveTrail(id))
	})
}

// SetAllExpanded expands every id that the tree has materialized.
func (e *Engine[T]) SetAllExpanded(ids ...string) {
	e.UpdateState(func(s domain.ViewState) domain.ViewState {
		return domain.WithAllExpanded(s, ids, func(id string) bool {
			return e.tree.Node(id) != nil
		})
	})
}

// SetActiveID replaces the active node id; "" clears it.
func (e *Engine[T]) SetActiveID(id string) {
	e.UpdateState(func(s domain.ViewState) domain.ViewState {
		return domain.WithActiveID(s, id)
	})
}

// onActiveTrail reads trail membership from the latest snapshot. Callers
// already hold e.mu via UpdateState.
func (e *Engine[T]) onActiveTrail(id string) bool {
	vn := e.tree.Node(id)
	return vn != nil && vn.IsActiveTrail
}

// NodeController binds a single node id, for ergonomic use by one rendered
// row.
type NodeController[T any] struct {
	engine *Engine[T]
	id     string
}

// Node returns a controller bound to id.
func (e *Engine[T]) Node(id string) NodeController[T] {
	return NodeController[T]{engine: e, id: id}
}

// ID returns the bound node id.
func (c NodeController[T]) ID() string { return c.id }

// ToggleExpanded flips the bound node's effective expansion.
func (c NodeController[T]) ToggleExpanded() { c.engine.ToggleExpanded(c.id) }

// SetExpanded records an explicit override for the bound node.
func (c NodeController[T]) SetExpanded(expanded bool) { c.engine.SetExpanded(c.id, expanded) }

// SetActive makes the bound node the active one.
func (c NodeController[T]) SetActive() { c.engine.SetActiveID(c.id) }

// View returns the bound node's latest materialized view, or nil if it has
// not been materialized.
func (c NodeController[T]) View() *domain.ViewNode[T] { return c.engine.Tree().Node(c.id) }

// NodeSetController binds a set of node ids.
type NodeSetController[T any] struct {
	engine *Engine[T]
	ids    []string
}

// NodeSet returns a controller bound to a set of ids.
func (e *Engine[T]) NodeSet(ids ...string) NodeSetController[T] {
	return NodeSetController[T]{engine: e, ids: ids}
}

// SetAllExpanded expands every known node in the bound set.
func (c NodeSetController[T]) SetAllExpanded() { c.engine.SetAllExpanded(c.ids...) }
