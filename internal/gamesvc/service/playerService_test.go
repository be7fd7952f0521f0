package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"
)

// fakeAdmissionStore mimics the single-statement admission gate: refresh is
// always allowed for an already-active player, creation only under capacity.
type fakeAdmissionStore struct {
	players map[string]*models.Player
	now     func() time.Time
}

func (f *fakeAdmissionStore) AdmitOrRefresh(ctx context.Context, playerID string, activeSince time.Time, maxActive int) (*models.Player, error) {
	existing, isActive := f.players[playerID], false
	if existing != nil && !existing.LastActiveAt.Before(activeSince) {
		isActive = true
	}

	active, _ := f.CountActive(ctx, activeSince)
	if !isActive && active >= maxActive {
		return nil, nil
	}

	if existing == nil {
		existing = &models.Player{PlayerID: playerID, CreatedAt: f.now()}
		f.players[playerID] = existing
	}
	existing.LastActiveAt = f.now()

	cp := *existing
	return &cp, nil
}

func (f *fakeAdmissionStore) Touch(ctx context.Context, playerID string) (*models.Player, error) {
	p, ok := f.players[playerID]
	if !ok {
		p = &models.Player{PlayerID: playerID, CreatedAt: f.now()}
		f.players[playerID] = p
	}
	p.LastActiveAt = f.now()

	cp := *p
	return &cp, nil
}

func (f *fakeAdmissionStore) GetByID(ctx context.Context, playerID string) (*models.Player, error) {
	p, ok := f.players[playerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeAdmissionStore) CountActive(ctx context.Context, activeSince time.Time) (int, error) {
	n := 0
	for _, p := range f.players {
		if !p.LastActiveAt.Before(activeSince) {
			n++
		}
	}
	return n, nil
}

func newTestPlayerService(maxActive int) (*PlayerService, *fakeAdmissionStore, *fakeGuessStore) {
	now := time.Now()
	playerStore := &fakeAdmissionStore{
		players: map[string]*models.Player{},
		now:     func() time.Time { return now },
	}
	guessStore := &fakeGuessStore{guesses: map[string]*models.Guess{}}

	svc := NewPlayerService(playerStore, guessStore, maxActive, 24*time.Hour)
	svc.now = func() time.Time { return now }
	return svc, playerStore, guessStore
}

func TestAdmitCreatesWithZeroScore(t *testing.T) {
	svc, _, _ := newTestPlayerService(10)

	view, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", view.ID)
	require.Equal(t, int64(0), view.Score)
	require.Nil(t, view.PendingGuess)
}

func TestAdmitRejectsBeyondCapacity(t *testing.T) {
	svc, _, _ := newTestPlayerService(2)

	_, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)
	_, err = svc.AdmitOrRefresh(context.Background(), "p2")
	require.NoError(t, err)

	_, err = svc.AdmitOrRefresh(context.Background(), "p3")
	var capErr *AtCapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 2, capErr.ActiveUsers)
	require.Equal(t, 2, capErr.MaxUsers)
}

func TestAdmitRefreshDoesNotCountOwnSlot(t *testing.T) {
	svc, _, _ := newTestPlayerService(2)

	_, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)
	_, err = svc.AdmitOrRefresh(context.Background(), "p2")
	require.NoError(t, err)

	// the server is full, but a returning active player is not a new slot
	view, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", view.ID)
}

func TestAdmitInactivePlayersFreeCapacity(t *testing.T) {
	svc, playerStore, _ := newTestPlayerService(1)

	_, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)

	// p1 walked away two days ago; their slot must be reusable
	playerStore.players["p1"].LastActiveAt = time.Now().Add(-48 * time.Hour)

	_, err = svc.AdmitOrRefresh(context.Background(), "p2")
	require.NoError(t, err)
}

func TestAdmitRestoresPendingGuess(t *testing.T) {
	svc, _, guessStore := newTestPlayerService(10)

	_, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)

	pendingGuess(guessStore, "g1", "p1", models.DirectionRise, "94230.00", time.Now())

	view, err := svc.AdmitOrRefresh(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, view.PendingGuess)
	require.Equal(t, "g1", view.PendingGuess.ID)
}

func TestTouchIsGetOrCreate(t *testing.T) {
	svc, _, _ := newTestPlayerService(0) // capacity gate never applies to touch

	view, err := svc.Touch(context.Background(), "p9")
	require.NoError(t, err)
	require.Equal(t, "p9", view.ID)
	require.Equal(t, int64(0), view.Score)

	again, err := svc.Touch(context.Background(), "p9")
	require.NoError(t, err)
	require.Equal(t, view.ID, again.ID)
}
