package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the handler layer, which maps them to HTTP codes.
var (
	ErrPriceUnavailable = errors.New("no price sample available yet")
	ErrGuessNotFound    = errors.New("guess not found")
	ErrInvalidDirection = errors.New("direction must be rise or fall")
)

// GuessInProgressError rejects a second submission while one round is still
// pending. Carries the existing guess id so the client can resume it.
type GuessInProgressError struct {
	ExistingGuessID string
}

func (e *GuessInProgressError) Error() string {
	return fmt.Sprintf("guess %s is still in progress", e.ExistingGuessID)
}

// AtCapacityError rejects admission when the active-player ceiling is hit.
type AtCapacityError struct {
	ActiveUsers int
	MaxUsers    int
}

func (e *AtCapacityError) Error() string {
	return fmt.Sprintf("at capacity: %d of %d active players", e.ActiveUsers, e.MaxUsers)
}
