package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the tables the bot needs. Safe to run on every
// start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    telegram_id   BIGINT NOT NULL UNIQUE,
    username      TEXT NOT NULL DEFAULT '',
    registered_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_registered_at ON users (registered_at, id);
`)
	return err
}
