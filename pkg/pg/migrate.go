package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// Migrate applies the pending SQL migrations stored under dir in fsys and
// records them in cfg.MigrationsTable. Each applied file is logged.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string, cfg Config, log *slog.Logger) error {
	if fsys == nil {
		return errors.Join(ErrMigrate, errors.New("no migrations filesystem"))
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	table := cfg.MigrationsTable
	if table == "" {
		table = goose.DefaultTablename
	}
	store, err := database.NewStore(goose.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	// goose works on database/sql; the pool is bridged rather than dialled twice.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider("", db, sub,
		goose.WithStore(store),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	results, err := provider.Up(ctx)
	for _, res := range results {
		log.InfoContext(ctx, "migration applied",
			logger.Component("pg"),
			slog.Int64("version", res.Source.Version),
			slog.String("file", path.Base(res.Source.Path)),
			logger.Duration(res.Duration),
		)
	}
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}
