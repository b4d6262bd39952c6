// Package search implements the fuzzy entity search pipeline: structured
// pre-filtering, per-field n-gram indexing and scoring, multi-entity
// merging, and pagination.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/hondana/internal/config"
	"github.com/hyperjump/hondana/internal/corpus"
	"github.com/hyperjump/hondana/internal/models"
	"github.com/hyperjump/hondana/pkg/ngram"
)

// CombineFunc merges per-field fuzzy scores into one relevance score for
// a book. The weighting between fields is a documented policy, not a
// hard-coded constant; callers may override it with WithCombine.
type CombineFunc func(titleScore, authorScore float64) float64

// MaxCombine is the default combination policy: the higher of the title
// and author scores.
func MaxCombine(titleScore, authorScore float64) float64 {
	if titleScore > authorScore {
		return titleScore
	}
	return authorScore
}

// Searcher turns a raw query, entity type, and filters into scored,
// paginated results. It is stateless: every Search call builds its own
// transient indexes from its own corpus snapshot, so concurrent calls
// share nothing.
type Searcher struct {
	provider corpus.Provider
	cfg      config.SearchConfig
	combine  CombineFunc
	// customCombine records that combine is not MaxCombine. Max lets the
	// per-field queries prune at the final threshold; any other policy
	// needs complete per-field score maps.
	customCombine bool
}

// NewSearcher creates a searcher with the given corpus provider and
// search configuration. Zero config values are filled with defaults.
func NewSearcher(provider corpus.Provider, cfg *config.SearchConfig) *Searcher {
	var full config.Config
	if cfg != nil {
		full.Search = *cfg
	}
	config.ApplyDefaults(&full)
	return &Searcher{
		provider: provider,
		cfg:      full.Search,
		combine:  MaxCombine,
	}
}

// WithCombine overrides the multi-field score combination policy.
func (s *Searcher) WithCombine(fn CombineFunc) *Searcher {
	if fn != nil {
		s.combine = fn
		s.customCombine = true
	}
	return s
}

// Search runs the full pipeline: validate, fetch the corpus snapshot,
// score per entity type, merge, sort, and paginate. The pipeline is a
// pure function of (query, type, filters, config, snapshot); nothing is
// persisted across calls.
func (s *Searcher) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := s.checkConfig(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &ValidationError{Field: "request", Reason: "missing"}
	}
	query := strings.TrimSpace(req.Query)
	if ngram.Normalize(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "cannot be empty"}
	}

	entity := req.Type
	if entity == "" {
		entity = models.EntityAll
	}
	if !entity.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown entity type %q", req.Type)}
	}

	threshold := s.cfg.FuzzyThreshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return nil, &ConfigurationError{
				Setting: "threshold",
				Reason:  fmt.Sprintf("must be in [0,1], got %g", *req.Threshold),
			}
		}
		threshold = *req.Threshold
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, &ValidationError{Field: "page", Reason: fmt.Sprintf("must be >= 1, got %d", req.Page)}
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize < 1 || pageSize > s.cfg.MaxPageSize {
		return nil, &ValidationError{
			Field:  "page_size",
			Reason: fmt.Sprintf("must be in [1,%d], got %d", s.cfg.MaxPageSize, req.PageSize),
		}
	}

	books, err := s.provider.FetchBooks(ctx)
	if err != nil {
		return nil, &CollaboratorError{Op: "fetch corpus", Err: err}
	}

	var scored []Searchable
	if entity == models.EntityAll || entity == models.EntityBooks {
		hits, err := s.searchBooks(ctx, query, books, req.Filters, threshold)
		if err != nil {
			return nil, err
		}
		scored = append(scored, hits...)
	}
	if entity == models.EntityAll || entity == models.EntityAuthors {
		hits, err := s.searchAuthors(ctx, query, books, threshold)
		if err != nil {
			return nil, err
		}
		scored = append(scored, hits...)
	}
	if entity == models.EntityAll || entity == models.EntityCategories {
		hits, err := s.searchCategories(ctx, query, books, threshold)
		if err != nil {
			return nil, err
		}
		scored = append(scored, hits...)
	}

	// Stable sort: equal scores keep snapshot order, and for "all" the
	// books/authors/categories concatenation order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance() > scored[j].Relevance()
	})

	total := len(scored)
	startIdx := (page - 1) * pageSize
	endIdx := startIdx + pageSize
	if startIdx > total {
		startIdx = total
	}
	if endIdx > total {
		endIdx = total
	}

	results := make([]*models.SearchResult, 0, endIdx-startIdx)
	for _, hit := range scored[startIdx:endIdx] {
		results = append(results, hit.Result())
	}

	return &models.SearchResponse{
		Results:    results,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		HasMore:    page*pageSize < total,
		QueryTime:  time.Since(start).Milliseconds(),
		Query:      req.Query,
	}, nil
}

// searchBooks scores the pre-filtered snapshot against the query on the
// title and author fields and combines the per-field scores.
func (s *Searcher) searchBooks(ctx context.Context, query string, books []models.Book, filters *models.SearchFilters, threshold float64) ([]Searchable, error) {
	filtered := make([]models.Book, 0, len(books))
	for _, b := range books {
		if matchesFilters(&b, filters) {
			filtered = append(filtered, b)
		}
	}

	titleEntries := make([]ngram.Entry, len(filtered))
	authorEntries := make([]ngram.Entry, len(filtered))
	for i, b := range filtered {
		titleEntries[i] = ngram.Entry{ID: b.ID, Text: b.Title}
		authorEntries[i] = ngram.Entry{ID: b.ID, Text: b.Author}
	}
	titleIndex, err := ngram.BuildIndex(titleEntries, ngram.KindChar, s.cfg.CharacterNgramSize)
	if err != nil {
		return nil, &ConfigurationError{Setting: "character_ngram_size", Reason: err.Error()}
	}
	authorIndex, err := ngram.BuildIndex(authorEntries, ngram.KindChar, s.cfg.CharacterNgramSize)
	if err != nil {
		return nil, &ConfigurationError{Setting: "character_ngram_size", Reason: err.Error()}
	}

	// Deadline check between index build and scoring for large corpora.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fieldThreshold := threshold
	if s.customCombine {
		fieldThreshold = 0
	}
	titleScores, err := scoresByID(titleIndex, query, fieldThreshold)
	if err != nil {
		return nil, err
	}
	authorScores, err := scoresByID(authorIndex, query, fieldThreshold)
	if err != nil {
		return nil, err
	}

	hits := make([]Searchable, 0, len(titleScores)+len(authorScores))
	for _, b := range filtered {
		titleScore := titleScores[b.ID]
		authorScore := authorScores[b.ID]
		combined := s.combine(titleScore, authorScore)
		if combined >= threshold {
			hits = append(hits, &BookResult{
				Book:        b,
				TitleScore:  titleScore,
				AuthorScore: authorScore,
				Score:       combined,
			})
		}
	}
	return hits, nil
}

// searchAuthors deduplicates the snapshot to unique author names before
// indexing, so a popular author is scored once rather than once per book.
func (s *Searcher) searchAuthors(ctx context.Context, query string, books []models.Book, threshold float64) ([]Searchable, error) {
	entries := uniqueFieldEntries(books, func(b *models.Book) string { return b.Author })
	ix, err := ngram.BuildIndex(entries, ngram.KindChar, s.cfg.CharacterNgramSize)
	if err != nil {
		return nil, &ConfigurationError{Setting: "character_ngram_size", Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := ix.Query(query, threshold)
	if err != nil {
		return nil, &ConfigurationError{Setting: "fuzzy_threshold", Reason: err.Error()}
	}
	hits := make([]Searchable, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, &AuthorResult{Name: m.ID, Score: m.Score})
	}
	return hits, nil
}

// searchCategories deduplicates to unique genre names and matches with
// word n-grams, which suit short multi-word genre labels.
func (s *Searcher) searchCategories(ctx context.Context, query string, books []models.Book, threshold float64) ([]Searchable, error) {
	entries := uniqueFieldEntries(books, func(b *models.Book) string { return b.Genre })
	ix, err := ngram.BuildIndex(entries, ngram.KindWord, s.cfg.WordNgramSize)
	if err != nil {
		return nil, &ConfigurationError{Setting: "word_ngram_size", Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := ix.Query(query, threshold)
	if err != nil {
		return nil, &ConfigurationError{Setting: "fuzzy_threshold", Reason: err.Error()}
	}
	hits := make([]Searchable, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, &CategoryResult{Name: m.ID, Score: m.Score})
	}
	return hits, nil
}

func (s *Searcher) checkConfig() error {
	if s.cfg.CharacterNgramSize < 1 {
		return &ConfigurationError{
			Setting: "character_ngram_size",
			Reason:  fmt.Sprintf("must be positive, got %d", s.cfg.CharacterNgramSize),
		}
	}
	if s.cfg.WordNgramSize < 1 {
		return &ConfigurationError{
			Setting: "word_ngram_size",
			Reason:  fmt.Sprintf("must be positive, got %d", s.cfg.WordNgramSize),
		}
	}
	if s.cfg.FuzzyThreshold < 0 || s.cfg.FuzzyThreshold > 1 {
		return &ConfigurationError{
			Setting: "fuzzy_threshold",
			Reason:  fmt.Sprintf("must be in [0,1], got %g", s.cfg.FuzzyThreshold),
		}
	}
	return nil
}

// matchesFilters applies the AND-combined structured pre-filter. Unrated
// books carry a zero rating and fail any positive minimum.
func matchesFilters(b *models.Book, f *models.SearchFilters) bool {
	if f == nil {
		return true
	}
	if len(f.Genres) > 0 {
		found := false
		for _, g := range f.Genres {
			if g == b.Genre {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && b.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && b.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && b.Rating < *f.MinRating {
		return false
	}
	if f.InStockOnly && !b.InStock {
		return false
	}
	return true
}

// uniqueFieldEntries extracts one index entry per distinct non-empty field
// value, in first-occurrence snapshot order.
func uniqueFieldEntries(books []models.Book, field func(*models.Book) string) []ngram.Entry {
	seen := make(map[string]struct{}, len(books))
	entries := make([]ngram.Entry, 0, len(books))
	for i := range books {
		value := field(&books[i])
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		entries = append(entries, ngram.Entry{ID: value, Text: value})
	}
	return entries
}

// scoresByID queries the index and returns a score lookup keyed by entry id.
func scoresByID(ix *ngram.Index, query string, threshold float64) (map[string]float64, error) {
	matches, err := ix.Query(query, threshold)
	if err != nil {
		return nil, &ConfigurationError{Setting: "fuzzy_threshold", Reason: err.Error()}
	}
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		scores[m.ID] = m.Score
	}
	return scores, nil
}
