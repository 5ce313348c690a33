package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The QC retry loop is unbounded by design; this timeout is the
	// external cancellation it relies on.
	r.Use(middleware.Timeout(90 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/links/process", s.handleProcessLink)
		r.Get("/qc", s.handleQCGet)
		r.Post("/qc", s.handleQCPost)
		r.Post("/scrape", s.handleScrape)
		r.Post("/products", s.handleAddProduct)
		r.Post("/notify", s.handleNotify)
	})

	return r
}
