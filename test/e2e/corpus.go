// Package e2e provides end-to-end tests over a realistic catalog and
// multiple queries.
package e2e

import (
	"fmt"

	"github.com/hyperjump/hondana/internal/models"
)

// QueryTestCase defines a query and the result ID(s) that must appear in
// the response. At least one of ExpectedIDs must be present.
type QueryTestCase struct {
	Query       string
	Type        models.EntityType
	Threshold   float64
	ExpectedIDs []string
	Description string
}

// Corpus holds catalog books and query test cases for E2E tests.
type Corpus struct {
	Books        []models.Book
	TestCases    []QueryTestCase
	TotalBooks   int
	TotalQueries int
}

// BuildCorpus returns a catalog of books across several genres and query
// test cases covering exact matches, typos, authors, and categories.
func BuildCorpus() *Corpus {
	books := buildBooks()
	cases := buildQueryTestCases()
	return &Corpus{
		Books:        books,
		TestCases:    cases,
		TotalBooks:   len(books),
		TotalQueries: len(cases),
	}
}

func buildBooks() []models.Book {
	defs := []struct {
		title  string
		author string
		genre  string
		price  float64
		rating float64
		stock  bool
	}{
		{"The Hobbit", "J R R Tolkien", "Fantasy", 10.99, 4.8, true},
		{"The Fellowship of the Ring", "J R R Tolkien", "Fantasy", 12.99, 4.7, true},
		{"Harry Potter", "J K Rowling", "Fantasy", 11.50, 4.6, true},
		{"A Wizard of Earthsea", "Ursula K Le Guin", "Fantasy", 9.99, 4.3, false},
		{"Dune", "Frank Herbert", "Science Fiction", 14.50, 4.5, true},
		{"Foundation", "Isaac Asimov", "Science Fiction", 13.00, 4.4, true},
		{"Neuromancer", "William Gibson", "Science Fiction", 12.00, 4.1, true},
		{"The Left Hand of Darkness", "Ursula K Le Guin", "Science Fiction", 11.00, 4.2, true},
		{"Murder on the Orient Express", "Agatha Christie", "Mystery", 8.99, 4.3, true},
		{"Death on the Nile", "Agatha Christie", "Mystery", 8.50, 4.2, true},
		{"The Big Sleep", "Raymond Chandler", "Mystery", 9.25, 4.0, false},
		{"Gone Girl", "Gillian Flynn", "Mystery", 10.00, 4.1, true},
		{"Pride and Prejudice", "Jane Austen", "Romance", 7.99, 4.6, true},
		{"Sense and Sensibility", "Jane Austen", "Romance", 7.50, 4.3, true},
		{"Jane Eyre", "Charlotte Bronte", "Romance", 8.25, 4.4, true},
		{"Dracula", "Bram Stoker", "Horror", 9.00, 4.2, true},
		{"Frankenstein", "Mary Shelley", "Horror", 8.75, 4.3, true},
		{"The Shining", "Stephen King", "Horror", 11.25, 4.4, true},
		{"It", "Stephen King", "Horror", 12.75, 4.3, false},
		{"A Brief History of Time", "Stephen Hawking", "Science", 15.00, 4.5, true},
		{"The Selfish Gene", "Richard Dawkins", "Science", 13.50, 4.2, true},
		{"Sapiens", "Yuval Noah Harari", "History", 16.00, 4.6, true},
		{"Guns Germs and Steel", "Jared Diamond", "History", 14.00, 4.1, true},
		{"The Diary of a Young Girl", "Anne Frank", "Biography", 7.25, 4.7, true},
		{"Long Walk to Freedom", "Nelson Mandela", "Biography", 12.50, 4.5, true},
	}
	out := make([]models.Book, 0, len(defs))
	for i, d := range defs {
		out = append(out, models.Book{
			ID:      fmt.Sprintf("e2e-book-%03d", i+1),
			Title:   d.title,
			Author:  d.author,
			Genre:   d.genre,
			Price:   d.price,
			Rating:  d.rating,
			InStock: d.stock,
		})
	}
	return out
}

func buildQueryTestCases() []QueryTestCase {
	return []QueryTestCase{
		{
			Query:       "The Hobbit",
			Type:        models.EntityBooks,
			Threshold:   0.6,
			ExpectedIDs: []string{"e2e-book-001"},
			Description: "exact title finds the book",
		},
		{
			Query:       "dune",
			Type:        models.EntityBooks,
			Threshold:   0.6,
			ExpectedIDs: []string{"e2e-book-005"},
			Description: "case-insensitive exact title",
		},
		{
			Query:       "pride and prejudise",
			Type:        models.EntityBooks,
			Threshold:   0.6,
			ExpectedIDs: []string{"e2e-book-013"},
			Description: "single-typo title still matches",
		},
		{
			Query:       "frankenstien",
			Type:        models.EntityBooks,
			Threshold:   0.5,
			ExpectedIDs: []string{"e2e-book-017"},
			Description: "transposed letters still match at a relaxed threshold",
		},
		{
			Query:       "stephen king",
			Type:        models.EntityBooks,
			Threshold:   0.6,
			ExpectedIDs: []string{"e2e-book-018", "e2e-book-019"},
			Description: "author name finds the author's books",
		},
		{
			Query:       "agatha christie",
			Type:        models.EntityAuthors,
			Threshold:   0.6,
			ExpectedIDs: []string{"author_agatha_christie"},
			Description: "exact author in author search",
		},
		{
			Query:       "agata christie",
			Type:        models.EntityAuthors,
			Threshold:   0.6,
			ExpectedIDs: []string{"author_agatha_christie"},
			Description: "misspelled author still matches",
		},
		{
			Query:       "mystery",
			Type:        models.EntityCategories,
			Threshold:   0.6,
			ExpectedIDs: []string{"category_mystery"},
			Description: "exact category in category search",
		},
		{
			Query:       "science fiction",
			Type:        models.EntityCategories,
			Threshold:   0.6,
			ExpectedIDs: []string{"category_science_fiction"},
			Description: "multi-word category matches on word n-grams",
		},
		{
			Query:       "fantasy",
			Type:        models.EntityAll,
			Threshold:   0.6,
			ExpectedIDs: []string{"category_fantasy"},
			Description: "all-type search surfaces the matching category",
		},
	}
}
