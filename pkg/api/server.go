// Package api serves the hash engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/safehash/pkg/metrics"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/verify"
)

// Verifier is the part of verify.Service the handlers need.
type Verifier interface {
	Verify(ctx context.Context, opts safe.Options) (*verify.Report, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	ListenAddr string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit      int
	AllowedOrigins []string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	verifier Verifier
	metrics  *metrics.Metrics
	limiter  *RateLimiter
	router   chi.Router
	server   *http.Server
}

func NewServer(verifier Verifier, m *metrics.Metrics, cfg Config) *Server {
	s := &Server{
		verifier: verifier,
		metrics:  m,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit)
		r.Use(s.limiter.Middleware)
	}

	// Health check (public, outside /api/v1, for K8s probes)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(metrics.HTTPMetricsMiddleware(m, "networks")).Get("/networks", s.handleListNetworks)
		r.With(metrics.HTTPMetricsMiddleware(m, "versions")).Get("/versions", s.handleListVersions)
		r.With(metrics.HTTPMetricsMiddleware(m, "hashes")).Post("/hashes", s.handleCalculateHashes)
	})

	s.router = r
	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening and returns the underlying *http.Server so the caller
// can orchestrate graceful shutdown via srv.Shutdown(ctx). ListenAndServe runs
// in a goroutine; its error (if any) is sent on the returned channel.
func (s *Server) Start() (*http.Server, <-chan error) {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return s.server, errCh
}

// Shutdown gracefully drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}
