package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/hondana/internal/models"
	"github.com/hyperjump/hondana/internal/search"
	"github.com/hyperjump/hondana/internal/storage"
	"github.com/hyperjump/hondana/pkg/utils"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("query", utils.Truncate(req.Query, 120)), zap.String("type", string(req.Type)))

	response, err := s.searcher.Search(r.Context(), &req)
	if err != nil {
		var verr *search.ValidationError
		var cerr *search.ConfigurationError
		var collab *search.CollaboratorError
		switch {
		case errors.As(err, &verr), errors.As(err, &cerr):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &collab):
			s.logger.Error("search collaborator failed", zap.Error(err))
			s.respondError(w, http.StatusBadGateway, err.Error())
		default:
			s.logger.Error("search failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.recordSearch(r, &req, response)
	s.attachSuggestions(r, &req, response)
	s.respondJSON(w, http.StatusOK, response)
}

// recordSearch writes history and analytics rows for a completed search.
// Recording failures are logged and never fail the search itself.
func (s *Server) recordSearch(r *http.Request, req *models.SearchRequest, resp *models.SearchResponse) {
	if s.storage == nil || !s.config.Search.HistoryEnabledOrDefault() {
		return
	}
	ctx := r.Context()
	entity := req.Type
	if entity == "" {
		entity = models.EntityAll
	}
	item := &models.SearchHistoryItem{
		ID:          uuid.NewString(),
		Query:       req.Query,
		UserEmail:   req.UserEmail,
		SearchType:  string(entity),
		ResultCount: resp.TotalCount,
	}
	if err := s.storage.SaveSearch(ctx, item); err != nil {
		s.logger.Warn("failed to record search history", zap.Error(err))
	}
	analytics := &models.SearchAnalytics{
		ID:               uuid.NewString(),
		Query:            req.Query,
		ResultCount:      resp.TotalCount,
		ProcessingTimeMS: resp.QueryTime,
		UserEmail:        req.UserEmail,
		SearchType:       string(entity),
		HadResults:       resp.TotalCount > 0,
	}
	if err := s.storage.SaveAnalytics(ctx, analytics); err != nil {
		s.logger.Warn("failed to record search analytics", zap.Error(err))
	}
}

// attachSuggestions asks the suggestion collaborator for follow-up
// keywords. Suggestion failures are logged and leave the response as is.
func (s *Server) attachSuggestions(r *http.Request, req *models.SearchRequest, resp *models.SearchResponse) {
	if s.suggester == nil || !s.config.Search.SuggestionsEnabled {
		return
	}
	keywords, err := s.suggester.Suggest(r.Context(), req.Query, resp.Results, s.config.Search.MaxSuggestions)
	if err != nil {
		s.logger.Warn("suggestions failed", zap.Error(err))
		return
	}
	resp.SuggestedKeywords = keywords
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if book.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	s.logger.Debug("create book request", zap.String("id", book.ID), zap.String("title", book.Title))
	if err := s.storage.CreateBook(r.Context(), &book); err != nil {
		s.logger.Error("create book failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, &book)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.storage.ListBooks(r.Context())
	if err != nil {
		s.logger.Error("list books failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"total": len(books),
	})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	book, err := s.storage.GetBook(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "book not found")
		return
	}
	s.respondJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete book request", zap.String("id", id))
	if err := s.storage.DeleteBook(r.Context(), id); err != nil {
		s.logger.Error("delete book failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("user_email")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	items, err := s.storage.ListHistory(r.Context(), userEmail, limit)
	if err != nil {
		s.logger.Error("list history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.SearchHistoryItem{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"history": items})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("user_email")
	if err := s.storage.ClearHistory(r.Context(), userEmail); err != nil {
		s.logger.Error("clear history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handlePopularSearches(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	popular, err := s.storage.PopularSearches(r.Context(), limit)
	if err != nil {
		s.logger.Error("popular searches failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if popular == nil {
		popular = []models.PopularSearch{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"popular": popular})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	bookCount, err := s.storage.CountBooks(r.Context())
	if err != nil {
		s.logger.Error("status: count books failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"books": bookCount,
		"config": map[string]interface{}{
			"character_ngram_size": s.config.Search.CharacterNgramSize,
			"word_ngram_size":      s.config.Search.WordNgramSize,
			"fuzzy_threshold":      s.config.Search.FuzzyThreshold,
			"database_path":        s.config.Storage.DatabasePath,
		},
	}
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
