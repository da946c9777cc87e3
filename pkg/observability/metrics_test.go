package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnFetchStart(ctx, &domain.FetchEvent{Kind: domain.FetchChildren, IDs: []string{"a"}})
	hooks.OnFetchCommit(ctx, &domain.FetchEvent{Kind: domain.FetchChildren, IDs: []string{"a"}, Took: 5 * time.Millisecond})
	hooks.OnFetchCommit(ctx, &domain.FetchEvent{Kind: domain.FetchTrail, Err: errors.New("boom")})
	hooks.OnStaleDrop(ctx, &domain.FetchEvent{Kind: domain.FetchRoots})
	hooks.OnRecompute(ctx, &domain.RecomputeEvent{Nodes: 5, Reused: 3})
	hooks.OnRecompute(ctx, &domain.RecomputeEvent{Nodes: 5, Reused: 5})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesStarted.WithLabelValues("children")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesFailed.WithLabelValues("trail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleDrops.WithLabelValues("roots")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recomputes))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.nodesReused))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.nodesBuilt))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestMetricsEngineWiring(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	// Every hook the engine fires must be populated.
	hooks := m.Hooks()
	assert.NotNil(t, hooks.OnFetchStart)
	assert.NotNil(t, hooks.OnFetchCommit)
	assert.NotNil(t, hooks.OnStaleDrop)
	assert.NotNil(t, hooks.OnRecompute)
}
