// Package httpapi provides the HTTP server and routing for the goal
// projection service.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/trungvm/goalflow-backend/internal/usecase/goals"
	"github.com/trungvm/goalflow-backend/internal/usecase/progress"
	"github.com/trungvm/goalflow-backend/internal/usecase/series"
)

// Config holds server configuration
type Config struct {
	Port     int
	APIToken string
	Log      zerolog.Logger

	GoalService     *goals.Service
	ProgressService *progress.Service
	SeriesService   *series.Service
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	goalService     *goals.Service
	progressService *progress.Service
	seriesService   *series.Service
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		log:             cfg.Log.With().Str("component", "server").Logger(),
		goalService:     cfg.GoalService,
		progressService: cfg.ProgressService,
		seriesService:   cfg.SeriesService,
	}

	s.setupMiddleware(cfg.APIToken)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(apiToken string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(AuthMiddleware(apiToken))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleCreateGoal)
		r.Get("/goals/progress", s.handleListProgress)
		r.Get("/goals/{goalID}", s.handleGetGoal)
		r.Put("/goals/{goalID}", s.handleUpdateGoal)
		r.Delete("/goals/{goalID}", s.handleDeleteGoal)
		r.Get("/goals/{goalID}/progress", s.handleGetProgress)
		r.Get("/goals/{goalID}/history", s.handleGetHistory)
		r.Get("/goals/{goalID}/allocations", s.handleGetAllocations)
		r.Post("/allocations", s.handleUpsertAllocations)
		r.Post("/allocations/validate", s.handleValidateAllocation)
		r.Get("/accounts/{accountID}/unallocated", s.handleUnallocatedBalance)
		r.Get("/accounts/valuations", s.handleLatestValuations)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "goalflow",
	})
}
