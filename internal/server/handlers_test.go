package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/hondana/internal/config"
	"github.com/hyperjump/hondana/internal/models"
	"github.com/hyperjump/hondana/internal/search"
	"github.com/hyperjump/hondana/internal/storage"
	"github.com/hyperjump/hondana/internal/suggest"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = dbPath
	cfg.Search.SuggestionsEnabled = true

	searcher := search.NewSearcher(store, &cfg.Search)
	srv := NewServer(searcher, store, suggest.FallbackProvider{}, cfg, zap.NewNop())
	return srv, store
}

func seedBooks(t *testing.T, store *storage.SQLiteStorage) {
	t.Helper()
	books := []models.Book{
		{ID: "b1", Title: "Harry Potter", Author: "J K Rowling", Genre: "Fantasy", Price: 12.5, Rating: 4.5, InStock: true},
		{ID: "b2", Title: "The Hobbit", Author: "J R R Tolkien", Genre: "Fantasy", Price: 10, Rating: 4.8, InStock: true},
	}
	for i := range books {
		if err := store.CreateBook(context.Background(), &books[i]); err != nil {
			t.Fatal(err)
		}
	}
}

// withURLParam attaches a chi route parameter to the request context so
// handlers can be exercised without the full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleSearch(t *testing.T) {
	srv, store := newTestServer(t)
	seedBooks(t, store)

	body, _ := json.Marshal(&models.SearchRequest{Query: "Harry Potter", Type: models.EntityBooks})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %+v", resp)
	}
	if resp.Results[0].ID != "b1" || resp.Results[0].Score != 1.0 {
		t.Errorf("result = %+v", resp.Results[0])
	}
	if len(resp.SuggestedKeywords) != 0 {
		t.Errorf("matched query should carry no suggestions, got %v", resp.SuggestedKeywords)
	}

	// The search is recorded as history and analytics.
	history, err := store.ListHistory(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Query != "Harry Potter" || history[0].ResultCount != 1 {
		t.Errorf("history = %+v", history)
	}
	popular, err := store.PopularSearches(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(popular) != 1 || popular[0].Query != "Harry Potter" {
		t.Errorf("popular = %+v", popular)
	}
}

func TestHandleSearch_EmptyQueryRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(&models.SearchRequest{Query: "   "})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_NoResultsGetsSuggestions(t *testing.T) {
	srv, store := newTestServer(t)
	seedBooks(t, store)

	body, _ := json.Marshal(&models.SearchRequest{Query: "zzzzzz"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 0 {
		t.Errorf("expected no results, got %d", resp.TotalCount)
	}
	if len(resp.SuggestedKeywords) == 0 {
		t.Error("expected suggested keywords on empty result set")
	}
}

func TestHandleSearch_HistoryDisabled(t *testing.T) {
	srv, store := newTestServer(t)
	seedBooks(t, store)
	disabled := false
	srv.config.Search.HistoryEnabled = &disabled

	body, _ := json.Marshal(&models.SearchRequest{Query: "hobbit"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	history, err := store.ListHistory(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("expected no history when disabled, got %+v", history)
	}
}

func TestHandleBookLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]interface{}{
		"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction", "price": 15.0,
	})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/books", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleCreateBook(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body: %s", w.Code, w.Body.String())
	}
	var created models.Book
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected generated book id")
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/books/"+created.ID, nil), "id", created.ID)
	w = httptest.NewRecorder()
	srv.handleGetBook(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	w = httptest.NewRecorder()
	srv.handleListBooks(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("list status: got %d", w.Code)
	}
	var listed struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if listed.Total != 1 {
		t.Errorf("total: got %d, want 1", listed.Total)
	}

	r = withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/books/"+created.ID, nil), "id", created.ID)
	w = httptest.NewRecorder()
	srv.handleDeleteBook(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", w.Code)
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/books/"+created.ID, nil), "id", created.ID)
	w = httptest.NewRecorder()
	srv.handleGetBook(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", w.Code)
	}
}

func TestHandleCreateBook_MissingTitle(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"author": "Nobody"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/books", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleCreateBook(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleHistoryListAndClear(t *testing.T) {
	srv, store := newTestServer(t)
	for _, q := range []string{"first", "second"} {
		item := &models.SearchHistoryItem{ID: q, Query: q, UserEmail: "reader@example.com"}
		if err := store.SaveSearch(context.Background(), item); err != nil {
			t.Fatal(err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/search/history?user_email=reader@example.com", nil)
	w := httptest.NewRecorder()
	srv.handleHistoryList(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		History []models.SearchHistoryItem `json:"history"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.History) != 2 {
		t.Errorf("history: got %d items, want 2", len(out.History))
	}

	r = httptest.NewRequest(http.MethodDelete, "/api/v1/search/history?user_email=reader@example.com", nil)
	w = httptest.NewRecorder()
	srv.handleHistoryClear(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status: got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/search/history?user_email=reader@example.com", nil)
	w = httptest.NewRecorder()
	srv.handleHistoryList(w, r)
	out.History = nil
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.History) != 0 {
		t.Errorf("history after clear: got %v", out.History)
	}
}

func TestHandleHistoryList_BadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/search/history?limit=abc", nil)
	w := httptest.NewRecorder()
	srv.handleHistoryList(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, store := newTestServer(t)
	seedBooks(t, store)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Books          int64  `json:"books"`
		DiskUsageBytes *int64 `json:"disk_usage_bytes"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Books != 2 {
		t.Errorf("books: got %d, want 2", out.Books)
	}
	if out.DiskUsageBytes == nil || *out.DiskUsageBytes < 1 {
		t.Error("expected positive disk_usage_bytes")
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}
