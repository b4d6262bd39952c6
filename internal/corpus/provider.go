// Package corpus defines the corpus provider collaborator: the source of
// point-in-time book snapshots the search core scores against.
package corpus

import (
	"context"

	"github.com/hyperjump/hondana/internal/models"
)

// Provider supplies the corpus snapshot for one search invocation. The
// core treats the returned slice as immutable and never retries a failed
// fetch; retry policy belongs to the caller.
type Provider interface {
	FetchBooks(ctx context.Context) ([]models.Book, error)
}

// StaticProvider serves a fixed in-memory snapshot. Used in tests and for
// small embedded catalogs.
type StaticProvider struct {
	books []models.Book
}

// NewStaticProvider creates a provider over a fixed set of books.
func NewStaticProvider(books []models.Book) *StaticProvider {
	return &StaticProvider{books: books}
}

// FetchBooks returns a copy of the snapshot so callers cannot mutate the
// provider's backing slice.
func (p *StaticProvider) FetchBooks(ctx context.Context) ([]models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]models.Book(nil), p.books...), nil
}
