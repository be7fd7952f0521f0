package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrPendingGuess is returned when an insert hits the one-pending-per-player
// unique index (guesses_one_pending).
var ErrPendingGuess = errors.New("player already has a pending guess")

type GuessStore struct {
	db *pgxpool.Pool
}

func NewGuessStore(db *pgxpool.Pool) *GuessStore {
	return &GuessStore{db: db}
}

const guessColumns = `id, player_id, direction, entry_price, status, outcome, resolution_price, submitted_at, resolved_at`

func scanGuess(row pgx.Row) (*models.Guess, error) {
	g := &models.Guess{}
	err := row.Scan(
		&g.ID,
		&g.PlayerID,
		&g.Direction,
		&g.EntryPrice,
		&g.Status,
		&g.Outcome,
		&g.ResolutionPrice,
		&g.SubmittedAt,
		&g.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new pending guess. The partial unique index on
// (player_id) WHERE status='pending' makes the check-and-insert atomic:
// a second pending guess fails with ErrPendingGuess, never a duplicate row.
func (s *GuessStore) Create(ctx context.Context, id, playerID, direction string, entryPrice decimal.Decimal) (*models.Guess, error) {
	const query = `
		INSERT INTO guesses (id, player_id, direction, entry_price, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + guessColumns

	g, err := scanGuess(s.db.QueryRow(ctx, query, id, playerID, direction, entryPrice))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "guesses_one_pending" {
			return nil, ErrPendingGuess
		}
		return nil, fmt.Errorf("failed to create guess: %w", err)
	}

	return g, nil
}

func (s *GuessStore) GetByID(ctx context.Context, id string) (*models.Guess, error) {
	g, err := scanGuess(s.db.QueryRow(ctx, `
		SELECT `+guessColumns+`
		FROM guesses
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // guess not found
		}
		return nil, fmt.Errorf("failed to get guess: %w", err)
	}

	return g, nil
}

// GetPendingByPlayer returns the player's pending guess, or nil if none.
func (s *GuessStore) GetPendingByPlayer(ctx context.Context, playerID string) (*models.Guess, error) {
	g, err := scanGuess(s.db.QueryRow(ctx, `
		SELECT `+guessColumns+`
		FROM guesses
		WHERE player_id = $1 AND status = 'pending'
		LIMIT 1
	`, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending guess: %w", err)
	}

	return g, nil
}

// Resolve flips a pending guess to resolved and applies the score delta to
// the owning player in one transaction. The UPDATE is conditional on
// status='pending', so out of any number of concurrent callers exactly one
// applies the delta; the rest get applied=false and must re-read the row.
func (s *GuessStore) Resolve(ctx context.Context, id, outcome string, resolutionPrice decimal.Decimal, resolvedAt time.Time, scoreDelta int) (*models.Guess, int64, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to begin resolve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	g, err := scanGuess(tx.QueryRow(ctx, `
		UPDATE guesses
		SET status = 'resolved', outcome = $2, resolution_price = $3, resolved_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+guessColumns, id, outcome, resolutionPrice, resolvedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// a concurrent caller resolved it first
			return nil, 0, false, nil
		}
		return nil, 0, false, fmt.Errorf("failed to resolve guess: %w", err)
	}

	var newScore int64
	err = tx.QueryRow(ctx, `
		UPDATE players
		SET score = score + $2, last_active_at = NOW()
		WHERE player_id = $1
		RETURNING score
	`, g.PlayerID, scoreDelta).Scan(&newScore)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to apply score delta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, false, fmt.Errorf("failed to commit resolve tx: %w", err)
	}

	return g, newScore, true, nil
}
