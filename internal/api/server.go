package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eshaffer321/costshare/internal/api/handlers"
	"github.com/eshaffer321/costshare/internal/api/middleware"
	"github.com/eshaffer321/costshare/internal/application/billing"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           4200,
		AllowedOrigins: []string{"http://localhost:4200", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	billing    *billing.Service
	gatherer   prometheus.Gatherer
}

// NewServer creates a new API server.
// If gatherer is nil, /metrics is not mounted.
func NewServer(cfg Config, svc *billing.Service, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		billing:  svc,
		gatherer: gatherer,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.AllowedOrigins
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.billing, s.logger)
	s.router.Get("/health", healthHandler.ServeHTTP)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		// Billing and catalog
		billingHandler := handlers.NewBillingHandler(s.billing, s.logger)
		r.Get("/billing", billingHandler.Get)
		r.Get("/services", billingHandler.Services)

		// Overrides
		weightsHandler := handlers.NewWeightsHandler(s.billing, s.logger)
		r.Put("/services/{id}/weights", weightsHandler.Set)
		r.Delete("/services/{id}/weights", weightsHandler.Clear)

		// Feedback
		feedbackHandler := handlers.NewFeedbackHandler(s.billing, s.logger)
		r.Get("/feedback", feedbackHandler.List)
		r.Post("/feedback", feedbackHandler.Replace)
		r.Post("/feedback/service", feedbackHandler.Update)

		// Snapshots
		historyHandler := handlers.NewHistoryHandler(s.billing, s.logger)
		r.Get("/history", historyHandler.List)
		r.Post("/snapshot", historyHandler.Record)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
