package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/radassist/internal/export"
	"github.com/lehigh-university-libraries/radassist/internal/workflow"
)

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionStore.Create()
	slog.Info("Session created", "session_id", session.ID())
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": session.ID(),
		"state":      session.Snapshot(),
	})
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.sessionStore.Delete(session.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session.SetNotes(request.Notes)
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}

// HandleAnalyze submits the current image and notes. With ?wait=true the response is held
// until the analysis resolves.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Notes *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Notes != nil {
		session.SetNotes(*request.Notes)
	}

	done, err := session.Submit(r.Context())
	if errors.Is(err, workflow.ErrBusy) {
		h.writeError(w, "Analysis already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to start analysis: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
			h.writeJSON(w, http.StatusOK, session.Snapshot())
		case <-r.Context().Done():
		}
		return
	}

	h.writeJSON(w, http.StatusAccepted, session.Snapshot())
}

func (h *Handler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Panel(w, session.ID(), session.Snapshot()); err != nil {
		slog.Error("Unable to render panel", "session_id", session.ID(), "err", err)
	}
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	report, err := export.FromSnapshot(session.Snapshot())
	if err != nil {
		h.writeError(w, "No analysis result available", http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	data, contentType, err := export.Marshal(report, format)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ext := "json"
	if contentType == "application/yaml" {
		ext = "yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.%s"`, session.ID(), ext))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write report", "err", err)
	}
}
