package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"studio/internal/domain"
	"studio/internal/i18n"
	"studio/internal/middleware"
	"studio/internal/orchestrator"
)

type generateRequest struct {
	TransformationKey string            `json:"transformationKey"`
	Prompt            string            `json:"prompt"`
	Fields            map[string]string `json:"fields"`
	PrimaryImage      string            `json:"primaryImage"`
	SecondaryImage    string            `json:"secondaryImage"`
	GalleryImages     []string          `json:"galleryImages"`
	MaskImage         string            `json:"maskImage"`
	AspectRatio       string            `json:"aspectRatio"`
	Quality           string            `json:"quality"`
	BatchCount        int               `json:"batchCount"`
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Generate validates and starts a generation. The pipeline runs detached from
// the request so slow model calls and video polls survive the HTTP exchange;
// the client follows along via GET /v1/state.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", i18n.T(locale, "error.invalid_request"))
		return
	}

	s := a.session(w, r)
	if err := s.orch.SelectTransformation(req.TransformationKey); err != nil {
		a.error(w, http.StatusNotFound, "not_found", i18n.T(locale, "error.not_found"))
		return
	}

	input, err := buildInput(req)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.orch.SetInput(input)

	go func() {
		if err := s.orch.Generate(context.Background()); err != nil {
			a.logger.Info().
				Err(err).
				Str("session", s.id).
				Str("transformation", req.TransformationKey).
				Msg("generation failed")
		}
	}()

	a.json(w, http.StatusAccepted, s.orch.Snapshot())
}

// State returns the orchestrator's observable snapshot.
func (a *App) State(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	a.json(w, http.StatusOK, s.orch.Snapshot())
}

// SelectCandidate records the user's pick from a batch-candidate set.
func (a *App) SelectCandidate(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", i18n.T(locale, "error.invalid_request"))
		return
	}
	s := a.session(w, r)
	if err := s.orch.SelectCandidate(req.URL); err != nil {
		a.error(w, http.StatusConflict, "conflict", err.Error())
		return
	}
	a.json(w, http.StatusOK, s.orch.Snapshot())
}

// Animate submits the selected candidate through the video pipeline.
func (a *App) Animate(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	go func() {
		if err := s.orch.AnimateCandidate(context.Background()); err != nil {
			a.logger.Info().Err(err).Str("session", s.id).Msg("animation failed")
		}
	}()
	a.json(w, http.StatusAccepted, s.orch.Snapshot())
}

// Reset cancels any in-flight video poll and clears the session's transient
// state and history.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	s := a.session(w, r)
	s.orch.Reset()
	a.json(w, http.StatusOK, s.orch.Snapshot())
}

func buildInput(req generateRequest) (orchestrator.Input, error) {
	input := orchestrator.Input{
		Prompt:     req.Prompt,
		Fields:     req.Fields,
		Aspect:     domain.NormalizeAspect(req.AspectRatio),
		Quality:    domain.NormalizeQuality(req.Quality),
		BatchCount: req.BatchCount,
	}

	if req.PrimaryImage != "" {
		p, err := domain.ParseDataURL(req.PrimaryImage)
		if err != nil {
			return input, fmt.Errorf("primaryImage: %w", err)
		}
		input.Primary = &p
	}
	if req.SecondaryImage != "" {
		p, err := domain.ParseDataURL(req.SecondaryImage)
		if err != nil {
			return input, fmt.Errorf("secondaryImage: %w", err)
		}
		input.Secondary = &p
	}
	if req.MaskImage != "" {
		p, err := domain.ParseDataURL(req.MaskImage)
		if err != nil {
			return input, fmt.Errorf("maskImage: %w", err)
		}
		input.Mask = &p
	}
	for i, raw := range req.GalleryImages {
		p, err := domain.ParseDataURL(raw)
		if err != nil {
			return input, fmt.Errorf("galleryImages[%d]: %w", i, err)
		}
		input.Gallery = append(input.Gallery, p)
	}
	return input, nil
}
