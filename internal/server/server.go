// Package server provides the HTTP server and routing for Stockfolio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/stockfolio/internal/config"
	"github.com/aristath/stockfolio/internal/di"
	assethandlers "github.com/aristath/stockfolio/internal/modules/assets/handlers"
	portfoliohandlers "github.com/aristath/stockfolio/internal/modules/portfolio/handlers"
	valuationhandlers "github.com/aristath/stockfolio/internal/modules/valuation/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container    // DI container with all services
	Jobs      *di.JobInstances // Optional; enables the manual job triggers
	Scheduler JobRunner        // Runs manual triggers; optional
	Version   string
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	version        string
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		version:   cfg.Version,
	}

	s.systemHandlers = NewSystemHandlers(SystemHandlersConfig{
		DB:             cfg.Container.DB,
		DataDir:        cfg.Config.DataDir,
		QuoteProvider:  cfg.Config.QuoteProvider,
		OffsiteBackups: cfg.Container.S3Client != nil,
		Jobs:           cfg.Jobs,
		Runner:         cfg.Scheduler,
		Version:        cfg.Version,
	}, cfg.Log)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Valuations fan out to the quote provider; keep below WriteTimeout
	s.router.Use(middleware.Timeout(14 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		portfoliohandlers.NewHandler(s.container.PortfolioService, s.log).RegisterRoutes(r)
		valuationhandlers.NewHandler(s.container.ValuationService, s.log).RegisterRoutes(r)
		assethandlers.NewHandler(s.container.AssetService, s.log).RegisterRoutes(r)

		r.Route("/system", s.systemHandlers.RegisterRoutes)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops and
// returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := s.log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = s.log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
