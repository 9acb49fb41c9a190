// Package sqlite implements the match cache on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/promatch/cache"
	"github.com/smallnest/promatch/match"
)

// SqliteStore implements cache.Store using SQLite. Rows follow the persisted
// shape shared across engine versions: matches and metadata are stored as JSON
// columns next to the owner key and the three timestamps.
type SqliteStore struct {
	db        *sql.DB
	tableName string
}

var _ cache.Store = (*SqliteStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "match_cache"
}

// NewSqliteStore creates a new SQLite match cache
func NewSqliteStore(opts SqliteOptions) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "match_cache"
	}

	store := &SqliteStore{
		db:        db,
		tableName: tableName,
	}

	if err := store.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			owner_id TEXT PRIMARY KEY,
			matches_json TEXT NOT NULL,
			total_matches INTEGER NOT NULL,
			metadata_json TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		);
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// Get returns the owner's entry, or cache.ErrMiss if absent or expired.
func (s *SqliteStore) Get(ctx context.Context, ownerID string) (*cache.Entry, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, matches_json, total_matches, metadata_json,
		       created_at, updated_at, expires_at
		FROM %s
		WHERE owner_id = ?
	`, s.tableName)

	var entry cache.Entry
	var matchesJSON, metadataJSON string

	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(
		&entry.OwnerID,
		&matchesJSON,
		&entry.TotalMatches,
		&metadataJSON,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}

	if err := json.Unmarshal([]byte(matchesJSON), &entry.Matches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	if entry.Expired(time.Now()) {
		return nil, cache.ErrMiss
	}

	return &entry, nil
}

// Upsert replaces the owner's row wholesale. The single-row conflict clause
// keeps the operation atomic per owner.
func (s *SqliteStore) Upsert(ctx context.Context, entry *cache.Entry) error {
	matches := entry.Matches
	if matches == nil {
		matches = []match.Enriched{}
	}
	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, matches_json, total_matches, metadata_json,
		                created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			matches_json = excluded.matches_json,
			total_matches = excluded.total_matches,
			metadata_json = excluded.metadata_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		entry.OwnerID,
		string(matchesJSON),
		entry.TotalMatches,
		string(metadataJSON),
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}

// Delete removes the owner's row.
func (s *SqliteStore) Delete(ctx context.Context, ownerID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE owner_id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
