// Package api exposes the admin HTTP surface: pool statistics and liveness.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/guileen/connpool/pool"
)

// StatsSource is anything that can report pool statistics. *pool.Pool[C]
// satisfies it for any C.
type StatsSource interface {
	Stats() pool.PoolStats
}

// Registry holds the named pools the admin surface reports on.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]StatsSource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]StatsSource)}
}

// Register adds a pool under its name. Re-registering a name replaces the
// previous entry.
func (r *Registry) Register(name string, src StatsSource) {
	r.mu.Lock()
	r.pools[name] = src
	r.mu.Unlock()
}

// Get returns the pool registered under name.
func (r *Registry) Get(name string) (StatsSource, bool) {
	r.mu.RLock()
	src, ok := r.pools[name]
	r.mu.RUnlock()
	return src, ok
}

// Snapshot returns the stats of every registered pool, sorted by name.
func (r *Registry) Snapshot() []pool.PoolStats {
	r.mu.RLock()
	stats := make([]pool.PoolStats, 0, len(r.pools))
	for _, src := range r.pools {
		stats = append(stats, src.Stats())
	}
	r.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Handler serves the admin API over a registry.
type Handler struct {
	registry *Registry
	log      *slog.Logger
}

// NewHandler creates an admin handler.
func NewHandler(registry *Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{registry: registry, log: log}
}

// Routes mounts the admin endpoints on a new router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Route("/api/pools", func(r chi.Router) {
		r.Get("/", h.handleListPools)
		r.Get("/{name}", h.handleGetPool)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListPools(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"pools": h.registry.Snapshot(),
	})
}

func (h *Handler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, ok := h.registry.Get(name)
	if !ok {
		h.writeError(w, http.StatusNotFound, "pool not found: "+name)
		return
	}
	h.writeJSON(w, http.StatusOK, src.Stats())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
