package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

// AdmitOrRefresh admits playerID if there is capacity, or refreshes it if the
// player is already counted among the active set. The capacity gate and the
// upsert run in one statement so concurrent admissions cannot oversubscribe.
// Returns nil when the player was rejected for capacity.
func (s *PlayerStore) AdmitOrRefresh(ctx context.Context, playerID string, activeSince time.Time, maxActive int) (*models.Player, error) {
	const query = `
WITH me AS (
    SELECT last_active_at >= $2 AS is_active
    FROM players
    WHERE player_id = $1
),
active AS (
    SELECT COUNT(*) AS n FROM players WHERE last_active_at >= $2
)
INSERT INTO players (player_id)
SELECT $1
FROM active
WHERE active.n < $3 OR COALESCE((SELECT is_active FROM me), false)
ON CONFLICT (player_id)
DO UPDATE SET last_active_at = NOW()
RETURNING player_id, score, last_active_at, created_at;
`
	p := &models.Player{}
	err := s.db.QueryRow(ctx, query, playerID, activeSince, maxActive).Scan(
		&p.PlayerID,
		&p.Score,
		&p.LastActiveAt,
		&p.CreatedAt,
	)
	if err != nil {
		// zero rows means the capacity gate rejected the insert
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to admit player: %w", err)
	}

	return p, nil
}

// Touch refreshes last_active_at, creating the player with score 0 first if
// it does not exist. No capacity gate here, this is get-or-create by id.
func (s *PlayerStore) Touch(ctx context.Context, playerID string) (*models.Player, error) {
	const query = `
		INSERT INTO players (player_id)
		VALUES ($1)
		ON CONFLICT (player_id)
		DO UPDATE SET last_active_at = NOW()
		RETURNING player_id, score, last_active_at, created_at
	`

	p := &models.Player{}
	err := s.db.QueryRow(ctx, query, playerID).Scan(
		&p.PlayerID,
		&p.Score,
		&p.LastActiveAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch player: %w", err)
	}

	return p, nil
}

func (s *PlayerStore) GetByID(ctx context.Context, playerID string) (*models.Player, error) {
	row := s.db.QueryRow(ctx, `
        SELECT player_id, score, last_active_at, created_at
        FROM players
        WHERE player_id = $1
    `, playerID)

	p := &models.Player{}
	err := row.Scan(
		&p.PlayerID,
		&p.Score,
		&p.LastActiveAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // player not found
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

// CountActive counts players whose last activity falls within the rolling
// window. Used only for the capacity payload of a rejected admission.
func (s *PlayerStore) CountActive(ctx context.Context, activeSince time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM players WHERE last_active_at >= $1
    `, activeSince).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active players: %w", err)
	}

	return n, nil
}
