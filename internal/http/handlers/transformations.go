package handlers

import (
	"net/http"

	"studio/internal/catalog"
	"studio/internal/i18n"
	"studio/internal/middleware"
)

type transformationView struct {
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Shape        string   `json:"shape"`
	MaxImages    int      `json:"maxImages,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	SupportsMask bool     `json:"supportsMask,omitempty"`
	CustomPrompt bool     `json:"customPrompt,omitempty"`
}

// ListTransformations returns the catalog in the user's display order with
// localized titles.
func (a *App) ListTransformations(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	items := a.registry.List()
	views := make([]transformationView, 0, len(items))
	for _, t := range items {
		views = append(views, transformationView{
			Key:          t.Key,
			Title:        i18n.T(locale, t.TitleKey),
			Shape:        t.Shape.String(),
			MaxImages:    t.MaxImages,
			Fields:       t.Fields,
			SupportsMask: t.SupportsMask,
			CustomPrompt: t.Prompt == catalog.CustomPrompt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"transformations": views})
}

// ReorderTransformations persists a new display order. Unknown keys are
// dropped and missing keys appended, so the response echoes the order that
// was actually applied.
func (a *App) ReorderTransformations(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	var req struct {
		Order []string `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", i18n.T(locale, "error.invalid_request"))
		return
	}
	applied, err := a.registry.Reorder(req.Order)
	if err != nil {
		a.logger.Warn().Err(err).Msg("order persistence failed")
	}
	a.json(w, http.StatusOK, map[string]any{"order": applied})
}
