// Package suggest produces alternative search keywords for queries that
// come back empty or thin.
package suggest

import (
	"context"

	"github.com/hyperjump/hondana/internal/models"
)

// Provider proposes follow-up keywords for a query given the results it
// produced. Implementations may call external services; a nil slice
// means no suggestions.
type Provider interface {
	Suggest(ctx context.Context, query string, results []*models.SearchResult, max int) ([]string, error)
}

// FallbackProvider returns static guidance when a search produced no
// results. It never suggests anything for queries that already matched.
type FallbackProvider struct{}

var fallbackHints = []string{
	"try broader search terms",
	"search by author name",
	"browse by category",
}

// Suggest returns up to max static hints when results is empty.
func (FallbackProvider) Suggest(ctx context.Context, query string, results []*models.SearchResult, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) > 0 || max <= 0 {
		return nil, nil
	}
	hints := fallbackHints
	if max < len(hints) {
		hints = hints[:max]
	}
	out := make([]string, len(hints))
	copy(out, hints)
	return out, nil
}
