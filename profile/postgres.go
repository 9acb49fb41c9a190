package profile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store backed by PostgreSQL
type PostgresStore struct {
	pool      DBPool
	tableName string
}

var _ Store = (*PostgresStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "profiles"
}

// NewPostgresStore creates a new Postgres profile store
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "profiles"
	}

	return &PostgresStore{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// NewPostgresStoreWithPool creates a new Postgres profile store with an existing pool
// Useful for testing with mocks
func NewPostgresStoreWithPool(pool DBPool, tableName string) *PostgresStore {
	if tableName == "" {
		tableName = "profiles"
	}
	return &PostgresStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT,
			company TEXT,
			location TEXT,
			bio TEXT,
			skills TEXT[],
			interests TEXT[],
			wants_mentor BOOLEAN NOT NULL DEFAULT FALSE,
			wants_invest BOOLEAN NOT NULL DEFAULT FALSE,
			wants_discuss BOOLEAN NOT NULL DEFAULT FALSE,
			wants_collaborate BOOLEAN NOT NULL DEFAULT FALSE,
			wants_hire BOOLEAN NOT NULL DEFAULT FALSE,
			connections INTEGER NOT NULL DEFAULT 0
		);
	`, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const profileColumns = `id, name, title, company, location, bio, skills, interests,
		wants_mentor, wants_invest, wants_discuss, wants_collaborate, wants_hire, connections`

// Upsert inserts or replaces a profile.
func (s *PostgresStore) Upsert(ctx context.Context, p *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			interests = EXCLUDED.interests,
			wants_mentor = EXCLUDED.wants_mentor,
			wants_invest = EXCLUDED.wants_invest,
			wants_discuss = EXCLUDED.wants_discuss,
			wants_collaborate = EXCLUDED.wants_collaborate,
			wants_hire = EXCLUDED.wants_hire,
			connections = EXCLUDED.connections
	`, s.tableName, profileColumns)

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Title,
		p.Company,
		p.Location,
		p.Bio,
		p.Skills,
		p.Interests,
		p.Preferences.Mentor,
		p.Preferences.Invest,
		p.Preferences.Discuss,
		p.Preferences.Collaborate,
		p.Preferences.Hire,
		p.Connections,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Title,
		&p.Company,
		&p.Location,
		&p.Bio,
		&p.Skills,
		&p.Interests,
		&p.Preferences.Mentor,
		&p.Preferences.Invest,
		&p.Preferences.Discuss,
		&p.Preferences.Collaborate,
		&p.Preferences.Hire,
		&p.Connections,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns a single profile or ErrNotFound.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, s.tableName)

	p, err := scanProfile(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// GetManyByID returns profiles for the given ids in one query, omitting missing ids.
func (s *PostgresStore) GetManyByID(ctx context.Context, ids []string) ([]*Profile, error) {
	if len(ids) == 0 {
		return []*Profile{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1)`, profileColumns, s.tableName)

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListAll returns every profile in the store.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, profileColumns, s.tableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]*Profile, error) {
	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}

	return profiles, nil
}
