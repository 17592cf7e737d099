package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/config"
	mongoconn "github.com/dmitrymomot/mailmerge/pkg/mongo"
	"github.com/dmitrymomot/mailmerge/pkg/pg"
	redisconn "github.com/dmitrymomot/mailmerge/pkg/redis"
	"github.com/dmitrymomot/mailmerge/svc/preview"
	"github.com/dmitrymomot/mailmerge/svc/preview/mongostore"
	"github.com/dmitrymomot/mailmerge/svc/preview/pgstore"
	"github.com/dmitrymomot/mailmerge/svc/preview/redisstore"
)

// previewStore bundles a storage driver with its readiness check and teardown.
type previewStore struct {
	storage preview.Storage
	ready   func(context.Context) error
	close   func(context.Context) error
}

func openPreviewStore(ctx context.Context, kind string, ttl time.Duration, log *slog.Logger) (*previewStore, error) {
	switch kind {
	case storageMongo:
		var cfg mongoconn.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := mongoconn.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := mongostore.New(ctx, client.Database(cfg.Database).Collection(cfg.Collection), ttl)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &previewStore{
			storage: store,
			ready:   mongoconn.Ping(client),
			close:   client.Disconnect,
		}, nil

	case storageRedis:
		var cfg redisconn.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redisconn.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := redisstore.New(client, ttl, redisstore.WithKeyPrefix(cfg.KeyPrefix))
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &previewStore{
			storage: store,
			ready:   redisconn.Ping(client),
			close:   func(context.Context) error { return client.Close() },
		}, nil

	case storagePostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		store, err := pgstore.New(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &previewStore{
			storage: store,
			ready:   pg.Ping(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case storageMemory:
		return &previewStore{
			storage: preview.NewMemoryStorage(),
			ready:   func(context.Context) error { return nil },
			close:   func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown preview storage %q", kind)
}
