package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PriceStore struct {
	db *pgxpool.Pool
}

func NewPriceStore(db *pgxpool.Pool) *PriceStore {
	return &PriceStore{db: db}
}

// Get returns the latest price sample, or nil if no price has ever been
// recorded. Callers must treat nil as "unavailable", not a zero price.
func (s *PriceStore) Get(ctx context.Context) (*models.PriceSample, error) {
	row := s.db.QueryRow(ctx, `
        SELECT price, updated_at
        FROM price_sample
        WHERE id = 1
    `)

	sample := &models.PriceSample{}
	err := row.Scan(&sample.Price, &sample.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no price recorded yet
		}
		return nil, fmt.Errorf("failed to get price sample: %w", err)
	}

	return sample, nil
}

// Set overwrites the single price slot. The upsert is atomic, so readers
// always see either the previous or the new sample, never a partial write.
func (s *PriceStore) Set(ctx context.Context, price decimal.Decimal, updatedAt time.Time) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO price_sample (id, price, updated_at)
        VALUES (1, $1, $2)
        ON CONFLICT (id)
        DO UPDATE SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at
    `, price, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to set price sample: %w", err)
	}

	return nil
}
