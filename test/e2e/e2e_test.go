package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/hondana/internal/config"
	"github.com/hyperjump/hondana/internal/models"
	"github.com/hyperjump/hondana/internal/search"
	"github.com/hyperjump/hondana/internal/storage"
)

const e2ePageSize = 50

func newE2ESearcher(t *testing.T) (*search.Searcher, *storage.SQLiteStorage, *Corpus) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	corpus := BuildCorpus()
	if corpus.TotalBooks == 0 {
		t.Fatal("corpus has no books")
	}
	if corpus.TotalQueries == 0 {
		t.Fatal("corpus has no query test cases")
	}
	for i := range corpus.Books {
		if err := store.CreateBook(context.Background(), &corpus.Books[i]); err != nil {
			t.Fatalf("seed book %q: %v", corpus.Books[i].ID, err)
		}
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return search.NewSearcher(store, &cfg.Search), store, corpus
}

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	searcher, _, corpus := newE2ESearcher(t)
	ctx := context.Background()

	t.Logf("seeded %d books; running %d query test cases", corpus.TotalBooks, corpus.TotalQueries)

	for _, tc := range corpus.TestCases {
		tc := tc
		t.Run(tc.Description, func(t *testing.T) {
			threshold := tc.Threshold
			resp, err := searcher.Search(ctx, &models.SearchRequest{
				Query:     tc.Query,
				Type:      tc.Type,
				Threshold: &threshold,
				Page:      1,
				PageSize:  e2ePageSize,
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			resultIDs := make([]string, 0, len(resp.Results))
			for _, r := range resp.Results {
				resultIDs = append(resultIDs, r.ID)
			}
			if !containsAny(resultIDs, tc.ExpectedIDs) {
				t.Errorf("query %q: expected at least one of %v in results, got %d results (ids: %v)",
					tc.Query, tc.ExpectedIDs, len(resultIDs), resultIDs)
			}
		})
	}
}

func TestE2E_PaginationCoversAllMatches(t *testing.T) {
	searcher, _, corpus := newE2ESearcher(t)
	ctx := context.Background()

	// Threshold zero scores every book, so paging through must visit the
	// whole catalog exactly once with scores never increasing.
	threshold := 0.0
	seen := make(map[string]bool)
	lastScore := 2.0
	page := 1
	for {
		resp, err := searcher.Search(ctx, &models.SearchRequest{
			Query:     "the",
			Type:      models.EntityBooks,
			Threshold: &threshold,
			Page:      page,
			PageSize:  4,
		})
		if err != nil {
			t.Fatal(err)
		}
		if resp.TotalCount != corpus.TotalBooks {
			t.Fatalf("total_count = %d, want %d", resp.TotalCount, corpus.TotalBooks)
		}
		for _, r := range resp.Results {
			if seen[r.ID] {
				t.Fatalf("id %s appeared on more than one page", r.ID)
			}
			seen[r.ID] = true
			if r.Score > lastScore {
				t.Fatalf("score increased across pages: %f after %f", r.Score, lastScore)
			}
			lastScore = r.Score
		}
		wantMore := page*4 < resp.TotalCount
		if resp.HasMore != wantMore {
			t.Fatalf("page %d: has_more = %v, want %v", page, resp.HasMore, wantMore)
		}
		if !resp.HasMore {
			break
		}
		page++
	}
	if len(seen) != corpus.TotalBooks {
		t.Errorf("pages covered %d books, want %d", len(seen), corpus.TotalBooks)
	}
}

func TestE2E_FiltersNarrowResults(t *testing.T) {
	searcher, _, _ := newE2ESearcher(t)
	ctx := context.Background()

	threshold := 0.0
	resp, err := searcher.Search(ctx, &models.SearchRequest{
		Query:     "king",
		Type:      models.EntityBooks,
		Threshold: &threshold,
		Filters: &models.SearchFilters{
			Genres:      []string{"Horror"},
			InStockOnly: true,
		},
		Page:     1,
		PageSize: e2ePageSize,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range resp.Results {
		switch r.ID {
		case "e2e-book-016", "e2e-book-017", "e2e-book-018":
			// in-stock horror
		default:
			t.Errorf("unexpected id %s passed the horror/in-stock filter", r.ID)
		}
	}
	if resp.TotalCount != 3 {
		t.Errorf("total_count = %d, want 3 in-stock horror books", resp.TotalCount)
	}
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
