// Package models defines core data structures for books, search requests,
// and search results.
package models

import "time"

// Book represents a catalog item. The search core reads books as an
// immutable per-request snapshot; it never mutates or persists them.
type Book struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Author        string    `json:"author" db:"author"`
	Genre         string    `json:"genre" db:"genre"`
	Description   string    `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Rating        float64   `json:"rating,omitempty" db:"rating"`
	InStock       bool      `json:"in_stock" db:"in_stock"`
	CoverImageURL string    `json:"cover_image_url,omitempty" db:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
