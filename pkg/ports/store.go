package ports

import (
	"context"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// StateStore defines the interface for persisting view state.
// This lets a binding keep expand/collapse state across sessions or share it
// between instances, without the engine knowing about storage.
type StateStore interface {
	// Save persists the state under the given key.
	Save(ctx context.Context, key string, state domain.ViewState) error

	// Load retrieves the state for a key.
	// Returns domain.ErrStateNotFound if the key does not exist.
	Load(ctx context.Context, key string) (domain.ViewState, error)

	// Delete removes the state for a key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)
}
