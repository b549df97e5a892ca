package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/lehigh-university-libraries/radassist/internal/middleware"
	"github.com/lehigh-university-libraries/radassist/internal/web"
)

// Routes wires every endpoint onto a chi router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS)))
	r.Get("/healthcheck", h.HandleHealthcheck)
	r.Get("/", h.HandleIndex)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleSessionDetail)
			r.Delete("/", h.HandleDeleteSession)
			r.Get("/panel", h.HandlePanel)
			r.Post("/image", h.HandleUpload)
			r.Get("/image", h.HandleImage)
			r.Put("/notes", h.HandleNotes)
			r.Post("/analyze", h.HandleAnalyze)
			r.Get("/report", h.HandleReport)
		})
	})

	return r
}
