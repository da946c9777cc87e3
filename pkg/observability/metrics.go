package observability

import (
	"context"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one engine.
type Metrics struct {
	fetchesStarted *prometheus.CounterVec
	fetchesFailed  *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	staleDrops     *prometheus.CounterVec
	recomputes     prometheus.Counter
	nodesReused    prometheus.Counter
	nodesBuilt     prometheus.Counter
}

// NewMetrics creates and registers the collectors. Pass
// prometheus.DefaultRegisterer for the global registry, or a private one in
// tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usetree_fetches_started_total",
				Help: "Fetch batches issued against the tree source.",
			},
			[]string{"kind"},
		),
		fetchesFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usetree_fetches_failed_total",
				Help: "Fetch batches that failed and left their subtree loading.",
			},
			[]string{"kind"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "usetree_fetch_duration_seconds",
				Help:    "Time from issuing a fetch batch to its commit.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		staleDrops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usetree_stale_drops_total",
				Help: "Fetch results discarded because the source was swapped.",
			},
			[]string{"kind"},
		),
		recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usetree_recomputes_total",
			Help: "Materialized tree rebuilds.",
		}),
		nodesReused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usetree_nodes_reused_total",
			Help: "View nodes identity-preserved across rebuilds.",
		}),
		nodesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usetree_nodes_built_total",
			Help: "View nodes allocated fresh during rebuilds.",
		}),
	}
	reg.MustRegister(
		m.fetchesStarted,
		m.fetchesFailed,
		m.fetchDuration,
		m.staleDrops,
		m.recomputes,
		m.nodesReused,
		m.nodesBuilt,
	)
	return m
}

// Hooks returns lifecycle hooks that feed these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFetchStart: func(_ context.Context, ev *domain.FetchEvent) {
			m.fetchesStarted.WithLabelValues(string(ev.Kind)).Inc()
		},
		OnFetchCommit: func(_ context.Context, ev *domain.FetchEvent) {
			m.fetchDuration.WithLabelValues(string(ev.Kind)).Observe(ev.Took.Seconds())
			if ev.Err != nil {
				m.fetchesFailed.WithLabelValues(string(ev.Kind)).Inc()
			}
		},
		OnStaleDrop: func(_ context.Context, ev *domain.FetchEvent) {
			m.staleDrops.WithLabelValues(string(ev.Kind)).Inc()
		},
		OnRecompute: func(_ context.Context, ev *domain.RecomputeEvent) {
			m.recomputes.Inc()
			m.nodesReused.Add(float64(ev.Reused))
			m.nodesBuilt.Add(float64(ev.Nodes - ev.Reused))
		},
	}
}
