// Package memory provides in-memory implementations of the use-tree ports.
// It is the reference adapter for tests, demos, and embedded scenarios.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

// Item declares one node of an in-memory tree. Parent is the id of the parent
// item, or empty for a root. Items with the same parent keep their declaration
// order.
type Item[T any] struct {
	ID     string
	Data   T
	Parent string
}

// Source implements ports.TreeSource over a fixed set of items.
//
// The tree shape is immutable after construction; latency and failure
// injection exist so engine tests can exercise asynchronous behavior
// deterministically.
type Source[T any] struct {
	nodes    map[string]domain.Node[T]
	children map[string][]domain.Node[T]
	parents  map[string]string

	latency       time.Duration
	childLatency  map[string]time.Duration
	childrenErrs  map[string]error
	trailErrs     map[string]error
}

// SourceOption configures a Source.
type SourceOption[T any] func(*Source[T])

// WithLatency delays every call by d, simulating a slow backend.
func WithLatency[T any](d time.Duration) SourceOption[T] {
	return func(s *Source[T]) {
		s.latency = d
	}
}

// WithChildLatency delays Children calls for one specific id, overriding the
// global latency.
func WithChildLatency[T any](id string, d time.Duration) SourceOption[T] {
	return func(s *Source[T]) {
		s.childLatency[id] = d
	}
}

// WithChildrenError makes Children fail for the given id (use ports.RootID
// to fail the root fetch).
func WithChildrenError[T any](id string, err error) SourceOption[T] {
	return func(s *Source[T]) {
		s.childrenErrs[id] = err
	}
}

// WithTrailError makes Trail fail for the given id.
func WithTrailError[T any](id string, err error) SourceOption[T] {
	return func(s *Source[T]) {
		s.trailErrs[id] = err
	}
}

// NewSource builds a source from item declarations. Parents may be declared
// after their children; unknown parent ids panic, as that is a fixture bug.
func NewSource[T any](items []Item[T], opts ...SourceOption[T]) *Source[T] {
	s := &Source[T]{
		nodes:        make(map[string]domain.Node[T], len(items)),
		children:     make(map[string][]domain.Node[T]),
		parents:      make(map[string]string, len(items)),
		childLatency: make(map[string]time.Duration),
		childrenErrs: make(map[string]error),
		trailErrs:    make(map[string]error),
	}
	for _, item := range items {
		if item.ID == "" {
			panic("memory: item missing ID")
		}
		node := domain.Node[T]{ID: item.ID, Data: item.Data}
		s.nodes[item.ID] = node
		s.parents[item.ID] = item.Parent
		s.children[item.Parent] = append(s.children[item.Parent], node)
	}
	for _, item := range items {
		if item.Parent != "" {
			if _, ok := s.nodes[item.Parent]; !ok {
				panic(fmt.Sprintf("memory: item %q references unknown parent %q", item.ID, item.Parent))
			}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Children returns the ordered children of id, or the roots for ports.RootID.
func (s *Source[T]) Children(ctx context.Context, id string) ([]domain.Node[T], error) {
	delay := s.latency
	if d, ok := s.childLatency[id]; ok {
		delay = d
	}
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}
	if err, ok := s.childrenErrs[id]; ok {
		return nil, err
	}
	if id != ports.RootID {
		if _, ok := s.nodes[id]; !ok {
			return nil, fmt.Errorf("children of %q: %w", id, domain.ErrNodeNotFound)
		}
	}
	return append([]domain.Node[T](nil), s.children[id]...), nil
}

// Trail returns the node-first path from id to its root.
func (s *Source[T]) Trail(ctx context.Context, id string) ([]domain.Node[T], error) {
	if err := sleep(ctx, s.latency); err != nil {
		return nil, err
	}
	if err, ok := s.trailErrs[id]; ok {
		return nil, err
	}
	if _, ok := s.nodes[id]; !ok {
		return nil, fmt.Errorf("trail of %q: %w", id, domain.ErrNodeNotFound)
	}
	var trail []domain.Node[T]
	for cur := id; cur != ""; cur = s.parents[cur] {
		trail = append(trail, s.nodes[cur])
	}
	return trail, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
