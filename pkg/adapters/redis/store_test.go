package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/redis"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	state := domain.NewViewState()
	state.ActiveID = "n1"
	require.NoError(t, store.Save(ctx, "ttl-key", state))

	// Still there before expiry.
	_, err = store.Load(ctx, "ttl-key")
	assert.NoError(t, err)

	// miniredis advances time manually.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ttl-key")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	client := newTestClient(t)
	a := redis.NewFromClient(client, redis.WithPrefix("app-a:"))
	b := redis.NewFromClient(client, redis.WithPrefix("app-b:"))
	ctx := context.Background()

	state := domain.NewViewState()
	state.Expanded["n1"] = true
	require.NoError(t, a.Save(ctx, "shared-key", state))

	_, err := b.Load(ctx, "shared-key")
	assert.ErrorIs(t, err, domain.ErrStateNotFound, "prefixes must isolate stores")
}
