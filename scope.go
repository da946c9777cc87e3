package usetree

import (
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// Scope is the explicit environment object through which nested consumers
// reach the current tree and controller without threading them through every
// call. An owning layer creates one Scope per engine and hands it down; there
// is no global mutable state.
type Scope[T any] struct {
	engine *Engine[T]
}

// NewScope creates a scope backed by an engine.
func NewScope[T any](engine *Engine[T]) *Scope[T] {
	return &Scope[T]{engine: engine}
}

// NopScope returns a functional default scope: its tree is empty and its
// controller ignores every operation. Useful as a substitute in tests of
// components that consume a scope.
func NopScope[T any]() *Scope[T] {
	return &Scope[T]{}
}

// Tree returns the latest materialized tree, or an empty one for a nop scope.
func (s *Scope[T]) Tree() *domain.Tree[T] {
	if s.engine == nil {
		return &domain.Tree[T]{Nodes: map[string]*domain.ViewNode[T]{}}
	}
	return s.engine.Tree()
}

// Controller returns the engine's controller, or a no-op one.
func (s *Scope[T]) Controller() Controller {
	if s.engine == nil {
		return nopController{}
	}
	return s.engine
}

type nopController struct{}

func (nopController) UpdateState(domain.Transform)  {}
func (nopController) SetExpanded(string, bool)      {}
func (nopController) ToggleExpanded(string)         {}
func (nopController) SetAllExpanded(...string)      {}
func (nopController) SetActiveID(string)            {}
