package preview

import (
	"context"
	"time"
)

// Storage persists preview records.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Insert stores a new record. Returns ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, rec *Record) error

	// FindByID returns the record with the given id or ErrNotFound.
	// Expiry is checked by the Manager, so a stale record may be returned here.
	FindByID(ctx context.Context, id string) (*Record, error)

	// DeleteCreatedBefore removes records with CreatedAt <= cutoff
	// and returns how many were removed.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountCreatedAfter counts records with CreatedAt > since.
	CountCreatedAfter(ctx context.Context, since time.Time) (int64, error)
}
