// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tasteline-ai/tasteline/internal/analysis"
	"github.com/tasteline-ai/tasteline/internal/prefs"
	"github.com/tasteline-ai/tasteline/internal/scrape"
)

// Config holds the HTTP-facing settings.
type Config struct {
	Addr            string
	RateLimit       int
	RateLimitWindow time.Duration
}

// Server wires HTTP handlers to the orchestrator, the preferences
// store, and the scrapers.
type Server struct {
	cfg          Config
	orchestrator *analysis.Orchestrator
	prefs        *prefs.Store
	collector    *scrape.Collector
	validate     *validator.Validate
	log          zerolog.Logger
}

// New constructs the server. The collector may be nil when scraping
// is not configured; analyze requests must then carry inline reviews.
func New(cfg Config, orchestrator *analysis.Orchestrator, store *prefs.Store, collector *scrape.Collector, log zerolog.Logger) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		prefs:        store,
		collector:    collector,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		log:          log,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			window := s.cfg.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, window))
		}

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
		r.Delete("/preferences", s.handleDeletePreferences)
	})

	return r
}
