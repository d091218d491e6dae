package kv

import (
	"context"
	"fmt"

	"github.com/hray3182/diditakeit/internal/database"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURI string
}

// Open builds the store selected by opts.Driver. The postgres driver also
// runs pending migrations.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		db, err := database.New(ctx, opts.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
