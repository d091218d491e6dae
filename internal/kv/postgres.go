package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/hray3182/diditakeit/internal/database"
	"github.com/jackc/pgx/v5"
)

// Postgres stores blobs in the kv_store table created by the embedded
// migrations of package database.
type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.Pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	return p.Apply(ctx, Put(key, value))
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	return p.Apply(ctx, Remove(key))
}

func (p *Postgres) Apply(ctx context.Context, ops ...Op) error {
	tx, err := p.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range ops {
		if op.Delete {
			_, err = tx.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, op.Key)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO kv_store (key, value, updated_at)
				VALUES ($1, $2, CURRENT_TIMESTAMP)
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
			`, op.Key, op.Value)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", op.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
