// Package web exposes the analysis pipeline over a small JSON API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/cache"
)

// Server represents the web server
type Server struct {
	analyzer   *analysis.Analyzer
	cache      *cache.Cache
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server
func NewServer(analyzer *analysis.Analyzer, resultCache *cache.Cache, host string, port int) *Server {
	r := chi.NewRouter()

	s := &Server{
		analyzer: analyzer,
		cache:    resultCache,
		router:   r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // analysis of a large cluster can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/clusters/analyze", s.handleAnalyzeCluster)
		r.Post("/clusters/eligibility", s.handleEligibility)
		r.Post("/photos/rank", s.handleRankFaces)

		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClearAll)
		r.Delete("/cache/{clusterID}", s.handleCacheClear)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
