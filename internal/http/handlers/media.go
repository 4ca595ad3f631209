package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/i18n"
	"studio/internal/middleware"
	"studio/pkg/archive"
)

// History lists the session's results, newest first.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	a.json(w, http.StatusOK, map[string]any{"items": s.orch.History().List()})
}

// HistoryArchive streams the session's image results as a zip download.
func (a *App) HistoryArchive(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	s := a.session(w, r)
	data, err := archive.HistoryZip(s.orch.History().List())
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", i18n.T(locale, "error.not_found"))
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="studio-history.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Video serves stored video bytes for a history entry or fresh result.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	key := chi.URLParam(r, "key")
	if a.videos == nil || key == "" {
		a.error(w, http.StatusNotFound, "not_found", i18n.T(locale, "error.not_found"))
		return
	}
	data, err := a.videos.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.error(w, http.StatusNotFound, "not_found", i18n.T(locale, "error.not_found"))
			return
		}
		a.logger.Error().Err(err).Str("key", key).Msg("video read failed")
		a.error(w, http.StatusInternalServerError, "internal", "video unavailable")
		return
	}
	w.Header().Set("Content-Type", domain.VideoMIMEForKey(key))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
