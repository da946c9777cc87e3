// Package http serves a use-tree engine over a small JSON API.
//
// The handler is a thin bridge: reads return the engine's current snapshots,
// writes go through the controller operations, and /events streams tree
// updates as server-sent events so browser clients can re-render without
// polling.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server bridges one engine onto HTTP.
type Server[T any] struct {
	engine *usetree.Engine[T]
	logger *slog.Logger
}

// Option configures the handler.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics mounts a Prometheus exposition endpoint at /metrics for the
// given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *config) { c.gatherer = g }
}

// NewHandler creates the HTTP handler for an engine.
func NewHandler[T any](engine *usetree.Engine[T], opts ...Option) http.Handler {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Server[T]{engine: engine, logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealth)
	r.Get("/tree", s.getTree)
	r.Get("/tree/{id}", s.getNode)
	r.Get("/state", s.getState)
	r.Post("/state/active", s.postActive)
	r.Post("/state/expanded", s.postExpanded)
	r.Post("/state/toggle", s.postToggle)
	r.Post("/state/expand-all", s.postExpandAll)
	r.Get("/events", s.subscribeEvents)

	if cfg.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server[T]) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// getTree returns the materialized tree. With ?wait=1 the handler blocks
// until pending fetches settle, bounded by the request context, so tests and
// scripts can read a stable snapshot.
func (s *Server[T]) getTree(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "1" {
		if err := s.engine.WaitIdle(r.Context()); err != nil {
			http.Error(w, fmt.Sprintf("wait: %v", err), http.StatusRequestTimeout)
			return
		}
	}
	s.writeJSON(w, s.engine.Tree())
}

func (s *Server[T]) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node := s.engine.Tree().Node(id)
	if node == nil {
		http.Error(w, domain.ErrNodeNotFound.Error(), http.StatusNotFound)
		return
	}
	s.writeJSON(w, node)
}

func (s *Server[T]) getState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.State())
}

func (s *Server[T]) postActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !s.readJSON(w, r, &body) {
		return
	}
	s.engine.SetActiveID(body.ID)
	s.writeJSON(w, s.engine.State())
}

func (s *Server[T]) postExpanded(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       string `json:"id"`
		Expanded bool   `json:"expanded"`
	}
	if !s.readJSON(w, r, &body) {
		return
	}
	if body.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	s.engine.SetExpanded(body.ID, body.Expanded)
	s.writeJSON(w, s.engine.State())
}

func (s *Server[T]) postToggle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !s.readJSON(w, r, &body) {
		return
	}
	if body.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	s.engine.ToggleExpanded(body.ID)
	s.writeJSON(w, s.engine.State())
}

func (s *Server[T]) postExpandAll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if !s.readJSON(w, r, &body) {
		return
	}
	s.engine.SetAllExpanded(body.IDs...)
	s.writeJSON(w, s.engine.State())
}

// subscribeEvents streams tree snapshots as SSE. Each recompute that reaches
// the watcher becomes one data frame holding the full tree; intermediate
// snapshots may be skipped under load, the last one always arrives.
func (s *Server[T]) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := s.engine.Watch(r.Context())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected")
			return
		case tree, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(tree)
			if err != nil {
				s.logger.Error("sse encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server[T]) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server[T]) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}
