package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"studio/internal/catalog"
	"studio/internal/infra"
	"studio/internal/orchestrator"
	"studio/internal/storage"
)

// StatsSource exposes aggregate audit counts for the stats endpoint.
type StatsSource interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// App bundles the collaborators every handler needs.
type App struct {
	cfg      *infra.Config
	logger   infra.Logger
	registry *catalog.Registry
	gateway  orchestrator.Gateway
	marker   orchestrator.Marker
	videos   *storage.FileStore
	audit    orchestrator.AuditSink
	stats    StatsSource
	sessions *sessionManager
}

// Options wires an App. Audit and Stats may be nil when no database is
// configured.
type Options struct {
	Config   *infra.Config
	Logger   infra.Logger
	Registry *catalog.Registry
	Gateway  orchestrator.Gateway
	Marker   orchestrator.Marker
	Videos   *storage.FileStore
	Audit    orchestrator.AuditSink
	Stats    StatsSource
}

// NewApp constructs the handler container.
func NewApp(opts Options) *App {
	return &App{
		cfg:      opts.Config,
		logger:   opts.Logger,
		registry: opts.Registry,
		gateway:  opts.Gateway,
		marker:   opts.Marker,
		videos:   opts.Videos,
		audit:    opts.Audit,
		stats:    opts.Stats,
		sessions: newSessionManager(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "env": a.cfg.AppEnv})
}

// Stats returns aggregate generation counts from the audit trail.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	if a.stats == nil {
		a.json(w, http.StatusOK, map[string]int64{})
		return
	}
	counts, err := a.stats.CountByStatus(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("stats query failed")
		a.error(w, http.StatusInternalServerError, "internal", "stats unavailable")
		return
	}
	a.json(w, http.StatusOK, counts)
}
