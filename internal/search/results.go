package search

import (
	"math"
	"strings"

	"github.com/hyperjump/hondana/internal/models"
)

// Searchable is the capability shared by the closed set of result
// variants: a stable identifier, a display title, a relevance score, and
// a display URL.
type Searchable interface {
	ResultID() string
	DisplayTitle() string
	Relevance() float64
	ResultURL() string
	// Result converts the variant to its wire representation.
	Result() *models.SearchResult
}

// BookResult is a scored book hit with its per-field scores retained.
type BookResult struct {
	Book        models.Book
	TitleScore  float64
	AuthorScore float64
	Score       float64
}

func (r *BookResult) ResultID() string { return r.Book.ID }

func (r *BookResult) DisplayTitle() string { return r.Book.Title }

func (r *BookResult) Relevance() float64 { return r.Score }

func (r *BookResult) ResultURL() string { return "/books/" + r.Book.ID }

func (r *BookResult) Result() *models.SearchResult {
	return &models.SearchResult{
		ID:          r.Book.ID,
		Title:       r.Book.Title,
		Type:        "book",
		Subtitle:    r.Book.Author,
		Description: r.Book.Description,
		Image:       r.Book.CoverImageURL,
		URL:         r.ResultURL(),
		Score:       roundScore(r.Score),
	}
}

// AuthorResult is a scored unique author name.
type AuthorResult struct {
	Name  string
	Score float64
}

func (r *AuthorResult) ResultID() string { return "author_" + slugify(r.Name) }

func (r *AuthorResult) DisplayTitle() string { return r.Name }

func (r *AuthorResult) Relevance() float64 { return r.Score }

func (r *AuthorResult) ResultURL() string { return "/authors/" + slugify(r.Name) }

func (r *AuthorResult) Result() *models.SearchResult {
	return &models.SearchResult{
		ID:    r.ResultID(),
		Title: r.Name,
		Type:  "author",
		URL:   r.ResultURL(),
		Score: roundScore(r.Score),
	}
}

// CategoryResult is a scored unique genre name.
type CategoryResult struct {
	Name  string
	Score float64
}

func (r *CategoryResult) ResultID() string { return "category_" + slugify(r.Name) }

func (r *CategoryResult) DisplayTitle() string { return r.Name }

func (r *CategoryResult) Relevance() float64 { return r.Score }

func (r *CategoryResult) ResultURL() string { return "/categories/" + slugify(r.Name) }

func (r *CategoryResult) Result() *models.SearchResult {
	return &models.SearchResult{
		ID:    r.ResultID(),
		Title: r.Name,
		Type:  "category",
		URL:   r.ResultURL(),
		Score: roundScore(r.Score),
	}
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// roundScore rounds to three decimals for display; internal ranking uses
// the unrounded value.
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
