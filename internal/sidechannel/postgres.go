package sidechannel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores entries in the session_kv table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM session_kv WHERE key=$1`

	var val string
	if err := p.pool.QueryRow(ctx, query, key).Scan(&val); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (p *Postgres) Write(ctx context.Context, set map[string]string, remove ...string) error {
	const upsert = `
        INSERT INTO session_kv (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	const del = `DELETE FROM session_kv WHERE key = ANY($1)`

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for k, v := range set {
			if _, err := tx.Exec(ctx, upsert, k, v); err != nil {
				return err
			}
		}
		if len(remove) > 0 {
			if _, err := tx.Exec(ctx, del, remove); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return p.Write(ctx, nil, keys...)
}
