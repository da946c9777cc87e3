package ports

import (
	"context"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// RootID is the id passed to Children to request the root nodes.
const RootID = ""

// TreeSource defines how the engine retrieves the hierarchical data set.
// This allows the data layer (memory, files, a remote service) to be decoupled.
//
// Both operations are expected to be idempotent for the same id. The engine
// never retries a failed call; the affected subtree simply stays in its
// loading state.
//
// Implementations must be comparable by identity (in practice: pointer
// receivers), because the engine detects source swaps by comparing the
// supplied source against the previously seen one.
type TreeSource[T any] interface {
	// Children returns the ordered children of id, or the root nodes when
	// id is RootID.
	Children(ctx context.Context, id string) ([]domain.Node[T], error)

	// Trail returns the path from id to a root, node-first: trail[0] is the
	// node itself and the last element is a root. It must fail for unknown
	// ids (typically with domain.ErrNodeNotFound).
	Trail(ctx context.Context, id string) ([]domain.Node[T], error)
}
