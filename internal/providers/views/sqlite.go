package views

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store counts post views in SQLite. Use ":memory:" for an ephemeral store.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("views: open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("views: initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS post_views (
		slug TEXT PRIMARY KEY,
		views INTEGER NOT NULL DEFAULT 0
	);`)
	return err
}

func (s *Store) Name() string {
	return "sqlite"
}

// Increment records one view of slug and returns its new count.
func (s *Store) Increment(ctx context.Context, slug string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO post_views (slug, views) VALUES (?, 1)
	ON CONFLICT(slug) DO UPDATE SET views = views + 1
	RETURNING views`, slug).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("views: increment %q: %w", slug, err)
	}
	return n, nil
}

// PostViews returns the count for slug, zero if it was never viewed.
func (s *Store) PostViews(ctx context.Context, slug string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT views FROM post_views WHERE slug = ?`, slug).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("views: query %q: %w", slug, err)
	}
	return n, nil
}

func (s *Store) TotalViews(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(views), 0) FROM post_views`).Scan(&n); err != nil {
		return 0, fmt.Errorf("views: total: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
