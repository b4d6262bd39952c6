// Package server provides the HTTP API for Hondana.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/hondana/internal/config"
	"github.com/hyperjump/hondana/internal/search"
	"github.com/hyperjump/hondana/internal/storage"
	"github.com/hyperjump/hondana/internal/suggest"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Hondana API.
type Server struct {
	searcher  *search.Searcher
	storage   storage.Storage
	suggester suggest.Provider
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. The suggester
// may be nil, in which case responses carry no suggested keywords.
func NewServer(
	searcher *search.Searcher,
	store storage.Storage,
	suggester suggest.Provider,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		searcher:  searcher,
		storage:   store,
		suggester: suggester,
		config:    cfg,
		logger:    logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/search/history", s.handleHistoryList)
	r.Delete("/api/v1/search/history", s.handleHistoryClear)
	r.Get("/api/v1/search/popular", s.handlePopularSearches)
	r.Post("/api/v1/books", s.handleCreateBook)
	r.Get("/api/v1/books", s.handleListBooks)
	r.Get("/api/v1/books/{id}", s.handleGetBook)
	r.Delete("/api/v1/books/{id}", s.handleDeleteBook)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
