// Package history records completed resolutions in a local SQLite database.
// Only source and destination URLs are kept; signatures are never stored.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vavoo/internal/config"
	"vavoo/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	source_url      TEXT PRIMARY KEY,
	destination_url TEXT NOT NULL,
	strategy        TEXT NOT NULL,
	endpoint        TEXT NOT NULL,
	resolved_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS resolutions_resolved_at ON resolutions (resolved_at DESC);
`

// Store is a handle on the history database.
type Store struct {
	db *sql.DB
}

// OpenDefault opens the database at config.HistoryPath.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes or updates the entry for entry.SourceURL.
func (s *Store) Save(ctx context.Context, entry media.HistoryEntry) error {
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (source_url, destination_url, strategy, endpoint, resolved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_url) DO UPDATE SET
			destination_url = excluded.destination_url,
			strategy        = excluded.strategy,
			endpoint        = excluded.endpoint,
			resolved_at     = excluded.resolved_at`,
		entry.SourceURL, entry.DestinationURL, entry.Strategy, entry.Endpoint, entry.ResolvedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Load returns up to limit entries, most recent first. limit <= 0 means all.
func (s *Store) Load(ctx context.Context, limit int) ([]media.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_url, destination_url, strategy, endpoint, resolved_at
		FROM resolutions
		ORDER BY resolved_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e  media.HistoryEntry
			ms int64
		)
		if err := rows.Scan(&e.SourceURL, &e.DestinationURL, &e.Strategy, &e.Endpoint, &ms); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.ResolvedAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Remove deletes the entry for sourceURL.
func (s *Store) Remove(ctx context.Context, sourceURL string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE source_url = ?`, sourceURL); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display line per entry.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	var items []string
	for _, e := range entries {
		display := fmt.Sprintf("%s  [%s]  %s", e.ResolvedAt.Format("2006-01-02 15:04"), e.Strategy, e.SourceURL)
		if e.DestinationURL != e.SourceURL {
			display += " -> " + e.DestinationURL
		}
		items = append(items, display)
	}
	return items
}
