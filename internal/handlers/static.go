package handlers

import (
	"log/slog"
	"net/http"
)

// HandleIndex renders the full page for the browser's session
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFromCookie(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Page(w, session.ID(), session.Snapshot()); err != nil {
		slog.Error("Unable to render page", "session_id", session.ID(), "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
