package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the route table.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/track/{id}", func(r chi.Router) {
		r.Get("/", h.getTrack)
		r.Get("/stream", h.streamTrack)
		r.Get("/transcode", h.transcodeTrack)
		r.Post("/play", h.recordPlay)
		r.Post("/like", h.likeTrack)
		r.Delete("/like", h.unlikeTrack)
	})

	r.Get("/image/{key}", h.getImage)

	return r
}
