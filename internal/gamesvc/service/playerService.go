package service

import (
	"context"
	"time"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"
)

// PlayerStore is the persistence surface for admission and lookup.
type PlayerStore interface {
	AdmitOrRefresh(ctx context.Context, playerID string, activeSince time.Time, maxActive int) (*models.Player, error)
	Touch(ctx context.Context, playerID string) (*models.Player, error)
	GetByID(ctx context.Context, playerID string) (*models.Player, error)
	CountActive(ctx context.Context, activeSince time.Time) (int, error)
}

// PendingGuessReader supplies the pending round for session restore.
type PendingGuessReader interface {
	GetPendingByPlayer(ctx context.Context, playerID string) (*models.Guess, error)
}

// PlayerView is the session-restore payload: current score plus any round
// still in flight.
type PlayerView struct {
	ID           string        `json:"id"`
	Score        int64         `json:"score"`
	PendingGuess *models.Guess `json:"pendingGuess"`
}

type PlayerService struct {
	playerStore PlayerStore
	guessStore  PendingGuessReader

	maxActiveUsers int
	activeWindow   time.Duration

	now func() time.Time
}

func NewPlayerService(playerStore PlayerStore, guessStore PendingGuessReader, maxActiveUsers int, activeWindow time.Duration) *PlayerService {
	return &PlayerService{
		playerStore:    playerStore,
		guessStore:     guessStore,
		maxActiveUsers: maxActiveUsers,
		activeWindow:   activeWindow,
		now:            time.Now,
	}
}

// AdmitOrRefresh gates admission on the active-player ceiling. A player who
// is already counted among the active set never gets rejected by their own
// slot; abandoned sessions age out of the window instead of locking capacity.
func (s *PlayerService) AdmitOrRefresh(ctx context.Context, playerID string) (*PlayerView, error) {
	activeSince := s.now().Add(-s.activeWindow)

	p, err := s.playerStore.AdmitOrRefresh(ctx, playerID, activeSince, s.maxActiveUsers)
	if err != nil {
		return nil, err
	}
	if p == nil {
		active, err := s.playerStore.CountActive(ctx, activeSince)
		if err != nil {
			return nil, err
		}
		return nil, &AtCapacityError{ActiveUsers: active, MaxUsers: s.maxActiveUsers}
	}

	return s.view(ctx, p)
}

// Touch is get-or-create by id without the capacity gate.
func (s *PlayerService) Touch(ctx context.Context, playerID string) (*PlayerView, error) {
	p, err := s.playerStore.Touch(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return s.view(ctx, p)
}

func (s *PlayerService) view(ctx context.Context, p *models.Player) (*PlayerView, error) {
	pending, err := s.guessStore.GetPendingByPlayer(ctx, p.PlayerID)
	if err != nil {
		return nil, err
	}

	return &PlayerView{
		ID:           p.PlayerID,
		Score:        p.Score,
		PendingGuess: pending,
	}, nil
}
