package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/radassist/internal/ingest"
	"github.com/lehigh-university-libraries/radassist/internal/render"
	"github.com/lehigh-university-libraries/radassist/internal/storage"
	"github.com/lehigh-university-libraries/radassist/internal/workflow"
)

const sessionCookie = "radassist_session"

type Handler struct {
	sessionStore *storage.SessionStore
	ingester     *ingest.Ingester
	renderer     *render.Renderer
	secureCookie bool
}

func New(sessionStore *storage.SessionStore, ingester *ingest.Ingester, renderer *render.Renderer) *Handler {
	return &Handler{
		sessionStore: sessionStore,
		ingester:     ingester,
		renderer:     renderer,
	}
}

// WithSecureCookies marks the session cookie Secure, for deployments behind TLS
func (h *Handler) WithSecureCookies(secure bool) *Handler {
	h.secureCookie = secure
	return h
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*workflow.Controller, bool) {
	sessionID := chi.URLParam(r, "id")
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// sessionFromCookie returns the browser's controller, creating one when the cookie is absent or stale.
func (h *Handler) sessionFromCookie(w http.ResponseWriter, r *http.Request) *workflow.Controller {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if session, ok := h.sessionStore.Get(cookie.Value); ok {
			return session
		}
	}

	session := h.sessionStore.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Session created", "session_id", session.ID())
	return session
}
