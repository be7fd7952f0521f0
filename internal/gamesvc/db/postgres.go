package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// Connect initializes the connection pool
func Connect() (*pgxpool.Pool, error) {
	dsn := os.Getenv("DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Try pinging to make sure it's valid
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	DB = pool

	return pool, nil
}

// ClosePool is for graceful shutdown
func ClosePool() {
	if DB != nil {
		DB.Close()
	}
}

// InitSchema creates the game tables if they don't exist.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		player_id      TEXT PRIMARY KEY,
		score          BIGINT NOT NULL DEFAULT 0,
		last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS guesses (
		id               UUID PRIMARY KEY,
		player_id        TEXT NOT NULL REFERENCES players(player_id),
		direction        TEXT NOT NULL CHECK (direction IN ('rise', 'fall')),
		entry_price      NUMERIC(20,8) NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('pending', 'resolved')),
		outcome          TEXT CHECK (outcome IN ('correct', 'wrong')),
		resolution_price NUMERIC(20,8),
		submitted_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at      TIMESTAMPTZ
	);

	-- storage-level guarantee: at most one pending guess per player
	CREATE UNIQUE INDEX IF NOT EXISTS guesses_one_pending
		ON guesses(player_id) WHERE status = 'pending';

	-- fast pending-guess lookup for session restore
	CREATE INDEX IF NOT EXISTS idx_guesses_player_status
		ON guesses(player_id, status);

	-- single-slot current price, overwritten in place by the feed service
	CREATE TABLE IF NOT EXISTS price_sample (
		id         SMALLINT PRIMARY KEY CHECK (id = 1),
		price      NUMERIC(20,8) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
