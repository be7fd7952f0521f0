package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"
	"github.com/updown-labs/updown-services/internal/gamesvc/store"
)

// Pending reasons reported by TryResolve.
const (
	ReasonTimer               = "TIMER"
	ReasonPriceUnavailable    = "PRICE_UNAVAILABLE"
	ReasonAwaitingPriceChange = "AWAITING_PRICE_CHANGE"
)

// GuessStore is the persistence surface the resolution engine relies on.
type GuessStore interface {
	Create(ctx context.Context, id, playerID, direction string, entryPrice decimal.Decimal) (*models.Guess, error)
	GetByID(ctx context.Context, id string) (*models.Guess, error)
	GetPendingByPlayer(ctx context.Context, playerID string) (*models.Guess, error)
	Resolve(ctx context.Context, id, outcome string, resolutionPrice decimal.Decimal, resolvedAt time.Time, scoreDelta int) (*models.Guess, int64, bool, error)
}

// PriceReader reads the single-slot price sample.
type PriceReader interface {
	Get(ctx context.Context) (*models.PriceSample, error)
}

// PlayerReader looks up players for score reporting.
type PlayerReader interface {
	GetByID(ctx context.Context, playerID string) (*models.Player, error)
}

// SubmitView is returned on a successful guess submission.
type SubmitView struct {
	GuessID     string          `json:"guessId"`
	EntryPrice  decimal.Decimal `json:"entryPrice"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// ResolutionView reports the state of a round. Score and CurrentPrice are
// set only when resolved; Reason only while pending; SecondsLeft only while
// the timer is still the blocking condition.
type ResolutionView struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Outcome      *string          `json:"outcome,omitempty"`
	Score        *int64           `json:"score,omitempty"`
	CurrentPrice *decimal.Decimal `json:"currentPrice,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	SecondsLeft  *int64           `json:"secondsLeft,omitempty"`
}

type GuessService struct {
	guessStore  GuessStore
	priceStore  PriceReader
	playerStore PlayerReader

	roundDuration time.Duration
	priceDecimals int32

	now func() time.Time
}

func NewGuessService(guessStore GuessStore, priceStore PriceReader, playerStore PlayerReader, roundDuration time.Duration, priceDecimals int32) *GuessService {
	return &GuessService{
		guessStore:    guessStore,
		priceStore:    priceStore,
		playerStore:   playerStore,
		roundDuration: roundDuration,
		priceDecimals: priceDecimals,
		now:           time.Now,
	}
}

// Submit opens a new round for the player. The entry price comes exclusively
// from the server-held price store at this instant; the client cannot supply
// or influence it.
func (s *GuessService) Submit(ctx context.Context, playerID, direction string) (*SubmitView, error) {
	if !models.IsValidDirection(direction) {
		return nil, ErrInvalidDirection
	}

	sample, err := s.priceStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, ErrPriceUnavailable
	}

	entry := models.NormalizePrice(sample.Price, s.priceDecimals)

	g, err := s.guessStore.Create(ctx, uuid.New().String(), playerID, direction, entry)
	if err != nil {
		if errors.Is(err, store.ErrPendingGuess) {
			existing, lookupErr := s.guessStore.GetPendingByPlayer(ctx, playerID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			inProgress := &GuessInProgressError{}
			if existing != nil {
				inProgress.ExistingGuessID = existing.ID
			}
			return nil, inProgress
		}
		return nil, err
	}

	return &SubmitView{
		GuessID:     g.ID,
		EntryPrice:  g.EntryPrice,
		SubmittedAt: g.SubmittedAt,
	}, nil
}

// TryResolve is pull-based: no background timer watches the round. It is a
// pure decision over (now, guess row, current price) plus one conditional
// write, and is safe to call any number of times from any number of clients.
func (s *GuessService) TryResolve(ctx context.Context, guessID string) (*ResolutionView, error) {
	g, err := s.guessStore.GetByID(ctx, guessID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGuessNotFound
	}

	// resolved is sticky: return the stored result verbatim, no mutation
	if g.Status == models.StatusResolved {
		return s.resolvedView(ctx, g)
	}

	// condition 1: the round timer
	now := s.now()
	elapsed := now.Sub(g.SubmittedAt)
	if elapsed < s.roundDuration {
		left := int64(math.Ceil((s.roundDuration - elapsed).Seconds()))
		return &ResolutionView{
			ID:          g.ID,
			Status:      models.StatusPending,
			Reason:      ReasonTimer,
			SecondsLeft: &left,
		}, nil
	}

	sample, err := s.priceStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		// no countdown here: the caller keeps polling with no implied deadline
		return &ResolutionView{
			ID:     g.ID,
			Status: models.StatusPending,
			Reason: ReasonPriceUnavailable,
		}, nil
	}

	// condition 2: the price must actually move. A round never resolves
	// against a frozen price, no matter how long the timer has been done.
	current := models.NormalizePrice(sample.Price, s.priceDecimals)
	entry := models.NormalizePrice(g.EntryPrice, s.priceDecimals)
	if current.Equal(entry) {
		return &ResolutionView{
			ID:     g.ID,
			Status: models.StatusPending,
			Reason: ReasonAwaitingPriceChange,
		}, nil
	}

	outcome, delta := judge(g.Direction, entry, current)

	resolved, newScore, applied, err := s.guessStore.Resolve(ctx, g.ID, outcome, current, now, delta)
	if err != nil {
		return nil, err
	}
	if !applied {
		// a concurrent caller won the conditional update; serve its result
		stored, err := s.guessStore.GetByID(ctx, guessID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrGuessNotFound
		}
		return s.resolvedView(ctx, stored)
	}

	return &ResolutionView{
		ID:           resolved.ID,
		Status:       models.StatusResolved,
		Outcome:      resolved.Outcome,
		Score:        &newScore,
		CurrentPrice: resolved.ResolutionPrice,
	}, nil
}

// judge decides the outcome and score delta once both conditions hold.
func judge(direction string, entry, current decimal.Decimal) (string, int) {
	rose := current.GreaterThan(entry)
	if (direction == models.DirectionRise && rose) || (direction == models.DirectionFall && !rose) {
		return models.OutcomeCorrect, 1
	}
	return models.OutcomeWrong, -1
}

func (s *GuessService) resolvedView(ctx context.Context, g *models.Guess) (*ResolutionView, error) {
	p, err := s.playerStore.GetByID(ctx, g.PlayerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("owner %s of guess %s not found", g.PlayerID, g.ID)
	}

	score := p.Score
	return &ResolutionView{
		ID:           g.ID,
		Status:       models.StatusResolved,
		Outcome:      g.Outcome,
		Score:        &score,
		CurrentPrice: g.ResolutionPrice,
	}, nil
}
