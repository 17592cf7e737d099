package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

var (
	ErrInvalidConfig = errors.New("pg: invalid connection config")
	ErrConnect       = errors.New("pg: connect failed")
	ErrNotReady      = errors.New("pg: not ready")
	ErrMigrate       = errors.New("pg: migrations failed")
)

// IsNotFoundError reports whether a single-row query matched nothing.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
