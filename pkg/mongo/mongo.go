package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	// ErrConnect is returned when the client cannot be built or never answers a ping.
	ErrConnect = errors.New("mongo: connect failed")
	// ErrNotReady wraps a failed readiness ping.
	ErrNotReady = errors.New("mongo: not ready")
)

// Config is read from MONGODB_* variables when PREVIEW_STORAGE=mongo.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL" envDefault:"mongodb://localhost:27017"`
	Database        string        `env:"MONGODB_DATABASE" envDefault:"mailmerge"`
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"previews"`
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`
}

func (c Config) clientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.ConnectionURL).
		SetAppName("mailmerge").
		SetRetryWrites(true).
		SetRetryReads(true)
	if c.ConnectTimeout > 0 {
		opts.SetConnectTimeout(c.ConnectTimeout)
	}
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(c.MaxConnIdleTime)
	}
	return opts
}

// Connect builds a client and pings the primary, trying RetryAttempts times
// RetryInterval apart. A malformed URL fails at once.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, fmt.Errorf("%w: empty MONGODB_URL", ErrConnect)
	}
	client, err := mongo.Connect(cfg.clientOptions())
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			return client, nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	_ = client.Disconnect(context.WithoutCancel(ctx))
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrConnect, attempts, err)
}

// Ping returns a readiness check for client.
func Ping(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return errors.Join(ErrNotReady, err)
		}
		return nil
	}
}
