package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vinayprograms/pagesum/cache"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/metrics"
	"github.com/vinayprograms/pagesum/summarize"
)

// Server represents the HTTP server
type Server struct {
	orch   *summarize.Orchestrator
	cache  *cache.Cache
	logger *logging.Logger
}

// New creates a new Server
func New(orch *summarize.Orchestrator, c *cache.Cache, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.New()
	}
	return &Server{
		orch:   orch,
		cache:  c,
		logger: logger.WithComponent("server"),
	}
}

// Router returns the configured chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(requestMetrics)
	r.Use(chimw.Recoverer)

	r.Get("/api/health", s.health)
	r.Get("/api/providers", s.providers)
	r.Get("/api/summary", s.cachedSummary)
	r.Post("/api/summarize", s.summarize)
	r.Get("/api/history", s.history)
	r.Handle("/metrics", metrics.Handler())

	return r
}

// HTTPServer wraps Router in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
