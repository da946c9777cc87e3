package ports

import (
	"context"
	"testing"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewViewState()
		state.ActiveID = "n3"
		state.Expanded["n1"] = true
		state.Expanded["n2"] = false

		err := store.Save(ctx, key, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "n3", loaded.ActiveID)
		assert.Equal(t, true, loaded.Expanded["n1"])
		v, ok := loaded.Expanded["n2"]
		assert.True(t, ok, "explicit false override must survive a round trip")
		assert.False(t, v)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewViewState()))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrStateNotFound, "Load after Delete should return ErrStateNotFound")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "non-existent-"+key))
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, domain.NewViewState())
		_ = store.Save(ctx, id2, domain.NewViewState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}

// RunTreeSourceContract verifies a TreeSource implementation against the
// interface contract. The source must contain at least the following shape:
//
//	rootID ── childID ── grandchildID
//
// with rootID a root node, and must not contain a node named "missing".
func RunTreeSourceContract[T any](t *testing.T, source TreeSource[T], rootID, childID, grandchildID string) {
	ctx := context.Background()

	t.Run("Roots", func(t *testing.T) {
		roots, err := source.Children(ctx, RootID)
		require.NoError(t, err)

		require.NotEmpty(t, roots, "source must expose at least one root")
		assert.True(t, containsID(roots, rootID), "roots should contain %q", rootID)
	})

	t.Run("Children", func(t *testing.T) {
		children, err := source.Children(ctx, rootID)
		require.NoError(t, err)
		assert.True(t, containsID(children, childID), "children of %q should contain %q", rootID, childID)
	})

	t.Run("Children Is Idempotent", func(t *testing.T) {
		first, err := source.Children(ctx, rootID)
		require.NoError(t, err)
		second, err := source.Children(ctx, rootID)
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID, "child order must be stable")
		}
	})

	t.Run("Trail Is Node First", func(t *testing.T) {
		trail, err := source.Trail(ctx, grandchildID)
		require.NoError(t, err)

		require.NotEmpty(t, trail)
		assert.Equal(t, grandchildID, trail[0].ID, "trail[0] must be the node itself")
		assert.Equal(t, rootID, trail[len(trail)-1].ID, "trail must end at a root")
	})

	t.Run("Trail Suffix Invariant", func(t *testing.T) {
		trail, err := source.Trail(ctx, grandchildID)
		require.NoError(t, err)
		require.True(t, len(trail) >= 2, "fixture must be at least two levels deep")

		// Every suffix of a valid trail is the trail of its own head.
		for i := 1; i < len(trail); i++ {
			suffix, err := source.Trail(ctx, trail[i].ID)
			require.NoError(t, err)
			require.Equal(t, len(trail)-i, len(suffix))
			for j := range suffix {
				assert.Equal(t, trail[i+j].ID, suffix[j].ID)
			}
		}
	})

	t.Run("Trail Unknown ID", func(t *testing.T) {
		_, err := source.Trail(ctx, "missing")
		assert.Error(t, err, "trail of an unknown id must fail")
	})
}

func containsID[T any](nodes []domain.Node[T], id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
