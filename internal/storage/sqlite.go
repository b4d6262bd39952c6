// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/hondana/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		genre TEXT NOT NULL,
		description TEXT,
		price REAL NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		in_stock INTEGER NOT NULL DEFAULT 1,
		cover_image_url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_books_genre ON books(genre);

	CREATE TABLE IF NOT EXISTS search_history (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		user_email TEXT NOT NULL DEFAULT 'anonymous',
		search_type TEXT,
		result_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_user ON search_history(user_email, timestamp);

	CREATE TABLE IF NOT EXISTS search_analytics (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		processing_time_ms INTEGER NOT NULL DEFAULT 0,
		user_email TEXT,
		search_type TEXT,
		had_results INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analytics_query ON search_analytics(query);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateBook inserts a book.
func (s *SQLiteStorage) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, genre, description, price, rating, in_stock, cover_image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.Title, book.Author, book.Genre, book.Description,
		book.Price, book.Rating, book.InStock, book.CoverImageURL,
		book.CreatedAt, book.UpdatedAt,
	)
	return err
}

// GetBook returns a book by ID.
func (s *SQLiteStorage) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, genre, description, price, rating, in_stock, cover_image_url, created_at, updated_at
		 FROM books WHERE id = ?`, id,
	).Scan(&book.ID, &book.Title, &book.Author, &book.Genre, &book.Description,
		&book.Price, &book.Rating, &book.InStock, &book.CoverImageURL,
		&book.CreatedAt, &book.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns the whole catalog in insertion order, so repeated
// snapshots of an unchanged catalog are identical and tie-breaking by
// snapshot position stays deterministic.
func (s *SQLiteStorage) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, genre, description, price, rating, in_stock, cover_image_url, created_at, updated_at
		 FROM books ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Genre, &book.Description,
			&book.Price, &book.Rating, &book.InStock, &book.CoverImageURL,
			&book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// DeleteBook removes a book by ID.
func (s *SQLiteStorage) DeleteBook(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	return err
}

// CountBooks returns the total number of books.
func (s *SQLiteStorage) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

// FetchBooks returns the catalog snapshot; it makes SQLiteStorage usable
// as the search core's corpus provider.
func (s *SQLiteStorage) FetchBooks(ctx context.Context) ([]models.Book, error) {
	return s.ListBooks(ctx)
}

// SaveSearch records one performed search in the user's history.
func (s *SQLiteStorage) SaveSearch(ctx context.Context, item *models.SearchHistoryItem) error {
	if item.UserEmail == "" {
		item.UserEmail = "anonymous"
	}
	if item.Timestamp == 0 {
		item.Timestamp = time.Now().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (id, query, timestamp, user_email, search_type, result_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Query, item.Timestamp, item.UserEmail, item.SearchType, item.ResultCount,
	)
	return err
}

// ListHistory returns the most recent history items for a user.
func (s *SQLiteStorage) ListHistory(ctx context.Context, userEmail string, limit int) ([]models.SearchHistoryItem, error) {
	if userEmail == "" {
		userEmail = "anonymous"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, timestamp, user_email, search_type, result_count
		 FROM search_history WHERE user_email = ? ORDER BY timestamp DESC LIMIT ?`,
		userEmail, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.SearchHistoryItem
	for rows.Next() {
		var item models.SearchHistoryItem
		if err := rows.Scan(&item.ID, &item.Query, &item.Timestamp, &item.UserEmail,
			&item.SearchType, &item.ResultCount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ClearHistory removes all history for a user.
func (s *SQLiteStorage) ClearHistory(ctx context.Context, userEmail string) error {
	if userEmail == "" {
		userEmail = "anonymous"
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_history WHERE user_email = ?`, userEmail)
	return err
}

// SaveAnalytics records per-search metrics.
func (s *SQLiteStorage) SaveAnalytics(ctx context.Context, record *models.SearchAnalytics) error {
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_analytics (id, query, result_count, processing_time_ms, user_email, search_type, had_results, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Query, record.ResultCount, record.ProcessingTimeMS,
		record.UserEmail, record.SearchType, record.HadResults, record.Timestamp,
	)
	return err
}

// PopularSearches aggregates analytics by query and returns the most
// frequent ones.
func (s *SQLiteStorage) PopularSearches(ctx context.Context, limit int) ([]models.PopularSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, COUNT(*) AS count FROM search_analytics
		 GROUP BY query ORDER BY count DESC, query LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var popular []models.PopularSearch
	for rows.Next() {
		var p models.PopularSearch
		if err := rows.Scan(&p.Query, &p.Count); err != nil {
			return nil, err
		}
		popular = append(popular, p)
	}
	return popular, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
