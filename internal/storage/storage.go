// Package storage defines the persistence interfaces for the book catalog
// and search history/analytics.
package storage

import (
	"context"

	"github.com/hyperjump/hondana/internal/models"
)

// CatalogStore persists the book catalog the corpus provider reads from.
type CatalogStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBook(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	DeleteBook(ctx context.Context, id string) error
	CountBooks(ctx context.Context) (int64, error)
}

// HistoryStore persists per-user search history and per-search analytics.
// The search core never touches this store; recording happens around it.
type HistoryStore interface {
	SaveSearch(ctx context.Context, item *models.SearchHistoryItem) error
	ListHistory(ctx context.Context, userEmail string, limit int) ([]models.SearchHistoryItem, error)
	ClearHistory(ctx context.Context, userEmail string) error
	SaveAnalytics(ctx context.Context, record *models.SearchAnalytics) error
	PopularSearches(ctx context.Context, limit int) ([]models.PopularSearch, error)
}

// Storage is the combined persistence surface backed by one database.
type Storage interface {
	CatalogStore
	HistoryStore
	Close() error
}
