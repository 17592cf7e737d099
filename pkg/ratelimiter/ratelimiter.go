// Package ratelimiter implements a token bucket limiter keyed by caller.
//
// Every key starts with a full bucket of Capacity tokens. RefillRate tokens
// are added back per RefillInterval, never beyond Capacity. A request that
// drives the bucket below zero is denied.
package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Limiter reports whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Config defines the token bucket: Capacity is the burst size and
// RefillRate tokens come back every RefillInterval. Enabled is for callers
// deciding whether to install a limiter at all; Bucket ignores it.
type Config struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	Capacity       int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Bucket is a Limiter over a Store.
type Bucket struct {
	store  Store
	config Config
}

func NewBucket(store Store, config Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: config}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, 1, b.config)
	if err != nil {
		return nil, err
	}
	return &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset forgets the bucket for key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
