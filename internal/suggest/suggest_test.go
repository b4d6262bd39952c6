package suggest

import (
	"context"
	"testing"

	"github.com/hyperjump/hondana/internal/models"
)

func TestFallbackProvider(t *testing.T) {
	var p FallbackProvider
	ctx := context.Background()

	hints, err := p.Suggest(ctx, "xyzzy", nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hints) != 3 {
		t.Fatalf("expected 3 hints, got %v", hints)
	}

	hints, err = p.Suggest(ctx, "xyzzy", nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hints) != 2 {
		t.Errorf("expected hints truncated to 2, got %v", hints)
	}

	// Queries with results get no hints.
	results := []*models.SearchResult{{ID: "b1", Title: "Harry Potter"}}
	hints, err = p.Suggest(ctx, "harry potter", results, 5)
	if err != nil {
		t.Fatal(err)
	}
	if hints != nil {
		t.Errorf("expected nil for non-empty results, got %v", hints)
	}
}

func TestFallbackProviderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (FallbackProvider{}).Suggest(ctx, "q", nil, 5); err == nil {
		t.Error("expected context error")
	}
}
