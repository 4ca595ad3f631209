package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/history"
	"studio/internal/i18n"
	"studio/internal/middleware"
	"studio/internal/orchestrator"
)

const sessionCookie = "studio_session"

// session owns one visitor's orchestrator and history. Video handles stored
// for the session are released through the history releaser on reset.
type session struct {
	id         string
	orch       *orchestrator.Orchestrator
	authorized bool
	createdAt  time.Time
}

type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[string]*session)}
}

// session finds or creates the caller's session, setting the cookie on first
// contact. The orchestrator's messages are bound to the locale detected when
// the session is created.
func (a *App) session(w http.ResponseWriter, r *http.Request) *session {
	a.sessions.mu.Lock()
	defer a.sessions.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := a.sessions.sessions[cookie.Value]; ok {
			return s
		}
	}

	id := uuid.NewString()
	locale := middleware.LocaleFromContext(r.Context())
	hist := history.NewStore(a.releaseVideo)
	s := &session{
		id: id,
		orch: orchestrator.New(orchestrator.Options{
			Gateway:   a.gateway,
			Marker:    a.marker,
			Registry:  a.registry,
			History:   hist,
			Videos:    a.videos,
			Audit:     a.audit,
			Logger:    &a.logger,
			Translate: i18n.Translator(locale),
			SessionID: id,
		}),
		createdAt: time.Now(),
	}
	a.sessions.sessions[id] = s

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (a *App) releaseVideo(key string) {
	if a.videos == nil || key == "" {
		return
	}
	if err := a.videos.Delete(context.Background(), key); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("video release failed")
	}
}

// RequireAccess gates the studio behind the configured access code. The code
// is compared against its deobfuscated form; an authorized session stays
// authorized for its lifetime. This mirrors the UX gate of the original
// studio and is not a security boundary.
func (a *App) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.AccessCode == "" {
			next.ServeHTTP(w, r)
			return
		}
		s := a.session(w, r)
		if s.authorized {
			next.ServeHTTP(w, r)
			return
		}
		if code := r.Header.Get("X-Access-Code"); code != "" && codeMatches(a.cfg.AccessCode, code) {
			a.sessions.mu.Lock()
			s.authorized = true
			a.sessions.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}
		locale := middleware.LocaleFromContext(r.Context())
		a.error(w, http.StatusUnauthorized, "unauthorized", i18n.T(locale, "error.passcode"))
	})
}

// Authorize handles the passcode form: POST /v1/session {"accessCode": "..."}.
func (a *App) Authorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string `json:"accessCode"`
	}
	locale := middleware.LocaleFromContext(r.Context())
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", i18n.T(locale, "error.invalid_request"))
		return
	}
	s := a.session(w, r)
	if a.cfg.AccessCode != "" && !codeMatches(a.cfg.AccessCode, req.AccessCode) {
		a.error(w, http.StatusUnauthorized, "unauthorized", i18n.T(locale, "error.passcode"))
		return
	}
	a.sessions.mu.Lock()
	s.authorized = true
	a.sessions.mu.Unlock()
	a.json(w, http.StatusOK, map[string]any{"authorized": true, "sessionId": s.id})
}

// codeMatches compares a submitted code against the stored obfuscated value:
// base64 of the reversed plaintext.
func codeMatches(obfuscated, submitted string) bool {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(obfuscated))
	if err != nil {
		return false
	}
	runes := []rune(string(raw))
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes) == submitted
}
