// Package testutils holds shared fixtures for tests that exercise a full
// engine rather than a single package.
package testutils

import (
	"context"
	"testing"
	"time"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/memory"
	"github.com/stretchr/testify/require"
)

// BasicItems returns the standard fixture tree: roots "a" and "b", with "a1"
// nested under "a".
func BasicItems() []memory.Item[string] {
	return []memory.Item[string]{
		{ID: "a", Data: "Alpha"},
		{ID: "a1", Data: "Alpha One", Parent: "a"},
		{ID: "b", Data: "Beta"},
	}
}

// SettledEngine builds an engine over BasicItems, waits for the initial
// fetches to resolve, and ties its lifetime to the test.
func SettledEngine(t *testing.T, opts ...usetree.Option[string]) *usetree.Engine[string] {
	t.Helper()
	engine := usetree.New[string](memory.NewSource(BasicItems()), opts...)
	t.Cleanup(engine.Close)
	WaitIdle(t, engine)
	return engine
}

// WaitIdle blocks until no fetch is in flight. It fails the test instead of
// hanging when the engine never settles.
func WaitIdle[T any](t *testing.T, engine *usetree.Engine[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, engine.WaitIdle(ctx))
}
