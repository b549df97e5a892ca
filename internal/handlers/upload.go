package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lehigh-university-libraries/radassist/internal/ingest"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	if h.ingester.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.ingester.MaxBytes+formOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
				return
			}
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	source := ingest.ParseSource(r.FormValue("source"))
	declared := header.Header.Get("Content-Type")

	img, err := h.ingester.Encode(r.Context(), file, header.Filename, declared, source)
	switch {
	case errors.Is(err, ingest.ErrNotImage):
		// Drops of non-images are ignored, matching the browser's drop filter.
		slog.Debug("Ignoring non-image drop", "session_id", session.ID(), "filename", header.Filename, "mime_type", declared)
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, ingest.ErrTooLarge):
		h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
		return
	case err != nil:
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return
	}

	snapshot := session.SetImage(img)
	slog.Info("Image uploaded", "session_id", session.ID(), "filename", img.Filename, "mime_type", img.MIMEType, "size", humanize.Bytes(uint64(img.Size)), "source", source)
	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleImage serves the current image so the browser can show a preview
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	img := session.Snapshot().Image
	if img == nil {
		h.writeError(w, "No image uploaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", previewContentType(img.MIMEType))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(img.Data); err != nil {
		slog.Error("Unable to write image", "err", err)
	}
}

// previewContentType only echoes raster image types; anything else, SVG included,
// is served as opaque bytes so it cannot execute same-origin.
func previewContentType(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") && mimeType != "image/svg+xml" {
		return mimeType
	}
	return "application/octet-stream"
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %s)", humanize.Bytes(uint64(h.ingester.MaxBytes)))
}
