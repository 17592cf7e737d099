// Package pg opens the pgx pool behind the postgres preview store and applies
// its goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, log); err != nil {
//	    return err
//	}
//
// IsNotFoundError and IsDuplicateKeyError classify driver errors for stores.
package pg
