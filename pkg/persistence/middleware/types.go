// Package middleware wraps a StateStore with cross-cutting persistence
// behavior, such as at-rest encryption of view states.
package middleware

import "github.com/RobbyUitbeijerse/use-tree/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore
