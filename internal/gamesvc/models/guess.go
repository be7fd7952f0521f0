package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Guess directions.
const (
	DirectionRise = "rise"
	DirectionFall = "fall"
)

// Guess status values. Resolved is terminal, there is no other transition.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Guess outcomes, set exactly once at resolution.
const (
	OutcomeCorrect = "correct"
	OutcomeWrong   = "wrong"
)

// Guess represents one round: the entry price locked at submission and,
// once resolved, the immutable resolution fields.
type Guess struct {
	ID              string           `json:"id"` // server-generated uuid
	PlayerID        string           `json:"player_id"`
	Direction       string           `json:"direction"`
	EntryPrice      decimal.Decimal  `json:"entry_price"`
	Status          string           `json:"status"`
	Outcome         *string          `json:"outcome,omitempty"`
	ResolutionPrice *decimal.Decimal `json:"resolution_price,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
}

// IsValidDirection reports whether d is one of the two playable directions.
func IsValidDirection(d string) bool {
	return d == DirectionRise || d == DirectionFall
}
