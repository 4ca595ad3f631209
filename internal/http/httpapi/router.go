package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// NewRouter assembles the studio API. Everything under /v1 except the health
// check and the passcode endpoint sits behind the access gate.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Locale(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/session", app.Authorize)

	r.Group(func(r chi.Router) {
		r.Use(app.RequireAccess)

		r.Get("/v1/transformations", app.ListTransformations)
		r.Put("/v1/transformations/order", app.ReorderTransformations)

		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/state", app.State)
		r.Post("/v1/select", app.SelectCandidate)
		r.Post("/v1/animate", app.Animate)
		r.Post("/v1/reset", app.Reset)

		r.Get("/v1/history", app.History)
		r.Get("/v1/history/archive", app.HistoryArchive)
		r.Get("/v1/videos/{key}", app.Video)

		r.Get("/v1/stats", app.Stats)
	})

	return r
}

// Options carries the router's middleware configuration.
type Options struct {
	Logger         zerolog.Logger
	DefaultLocale  string
	AllowedOrigins []string
	CountryLookup  middleware.CountryLookup
}
