package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func (c Config) poolConfig() (*pgxpool.Config, error) {
	if c.ConnectionString == "" {
		return nil, fmt.Errorf("%w: empty PG_CONN_URL", ErrInvalidConfig)
	}
	pc, err := pgxpool.ParseConfig(c.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	pc.MinConns = c.MinConns
	if c.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = c.HealthCheckPeriod
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "mailmerge"
	return pc, nil
}

// Connect opens a pool and pings it. Failed pings are retried with a linearly
// growing delay: RetryInterval, then twice that, and so on.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for attempt := 1; ; attempt++ {
		// The pool dials lazily; a ping surfaces auth and network errors now.
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(attempt) * cfg.RetryInterval):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrConnect, attempts, err)
}

// Ping returns a readiness check for pool.
func Ping(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrNotReady, err)
		}
		return nil
	}
}
