// Package pgstore keeps preview records in PostgreSQL.
//
// Postgres has no native row expiry, so records are removed only by the
// preview sweeper. Apply Migrations with pg.Migrate before use.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/mailmerge/pkg/pg"
	"github.com/dmitrymomot/mailmerge/svc/preview"
)

// Migrations holds the schema for the previews table under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations passed to pg.Migrate.
const MigrationsDir = "migrations"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertPreview = `INSERT INTO mailmerge_previews
    (public_id, subject, html, prompt, headers, sample_row, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectPreview = `SELECT public_id, subject, html, prompt, headers, sample_row, created_at
FROM mailmerge_previews
WHERE public_id = $1`

	deleteCreatedBefore = `DELETE FROM mailmerge_previews WHERE created_at <= $1`

	countCreatedAfter = `SELECT count(*) FROM mailmerge_previews WHERE created_at > $1`
)

// Store implements preview.Storage on PostgreSQL.
type Store struct {
	db DBTX
}

// New returns a Store using db.
func New(db DBTX) (*Store, error) {
	if db == nil {
		return nil, errors.New("pgstore: db is required")
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, rec *preview.Record) error {
	if rec == nil || rec.ID == "" {
		return preview.ErrInvalidRecord
	}

	headers := rec.Headers
	if headers == nil {
		headers = []string{}
	}
	sample := rec.SampleRow
	if sample == nil {
		sample = map[string]any{}
	}

	_, err := s.db.Exec(ctx, insertPreview,
		rec.ID, rec.Subject, rec.HTML, rec.Prompt, headers, sample, rec.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return preview.ErrDuplicateID
		}
		return errors.Join(preview.ErrStorage, err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*preview.Record, error) {
	var rec preview.Record
	err := s.db.QueryRow(ctx, selectPreview, id).Scan(
		&rec.ID, &rec.Subject, &rec.HTML, &rec.Prompt, &rec.Headers, &rec.SampleRow, &rec.CreatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, preview.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(preview.ErrStorage, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Headers == nil {
		rec.Headers = []string{}
	}
	return &rec, nil
}

func (s *Store) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteCreatedBefore, cutoff)
	if err != nil {
		return 0, errors.Join(preview.ErrStorage, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CountCreatedAfter(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, countCreatedAfter, since).Scan(&n); err != nil {
		return 0, errors.Join(preview.ErrStorage, err)
	}
	return n, nil
}

var _ preview.Storage = (*Store)(nil)
