package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/gamesvc/service"
)

type submitGuessRequest struct {
	PlayerID  string `json:"playerId"`
	Direction string `json:"direction"`
}

// SubmitGuessHandler opens a new round. The entry price is locked server-side
// at this moment; nothing in the request can set it.
func (h *Handler) SubmitGuessHandler(w http.ResponseWriter, r *http.Request) {
	var req submitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		h.CreateResponse(w, Response{
			Message: "invalid request",
			Code:    http.StatusBadRequest,
			Error:   "playerId and direction are required",
		})
		return
	}

	view, err := h.guessService.Submit(r.Context(), req.PlayerID, req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDirection):
			h.CreateResponse(w, Response{
				Message: "invalid request",
				Code:    http.StatusBadRequest,
				Error:   err.Error(),
			})
		case errors.Is(err, service.ErrPriceUnavailable):
			h.CreateResponse(w, Response{
				Message: "price feed not ready, try again shortly",
				Code:    http.StatusServiceUnavailable,
				Error:   "PriceUnavailable",
			})
		default:
			var inProgress *service.GuessInProgressError
			if errors.As(err, &inProgress) {
				h.CreateResponse(w, Response{
					Message: "a guess is already in progress",
					Code:    http.StatusConflict,
					Data: map[string]interface{}{
						"existingGuessId": inProgress.ExistingGuessID,
					},
					Error: "GuessInProgress",
				})
				return
			}

			log.Errorf("submit guess for player %s failed: %v", req.PlayerID, err)
			h.CreateResponse(w, Response{
				Message: "internal error",
				Code:    http.StatusInternalServerError,
				Error:   "internal error",
			})
		}
		return
	}

	h.CreateResponse(w, Response{
		Message: "guess submitted",
		Code:    http.StatusCreated,
		Data:    view,
	})
}

// GuessStatusHandler drives the pull-based resolution: each poll either
// reports why the round is still pending or settles it exactly once.
func (h *Handler) GuessStatusHandler(w http.ResponseWriter, r *http.Request) {
	guessID := chi.URLParam(r, "id")
	if guessID == "" {
		h.CreateResponse(w, Response{
			Message: "invalid request",
			Code:    http.StatusBadRequest,
			Error:   "id is required",
		})
		return
	}

	view, err := h.guessService.TryResolve(r.Context(), guessID)
	if err != nil {
		if errors.Is(err, service.ErrGuessNotFound) {
			h.CreateResponse(w, Response{
				Message: "guess not found",
				Code:    http.StatusNotFound,
				Error:   "NotFound",
			})
			return
		}

		log.Errorf("resolve guess %s failed: %v", guessID, err)
		h.CreateResponse(w, Response{
			Message: "internal error",
			Code:    http.StatusInternalServerError,
			Error:   "internal error",
		})
		return
	}

	h.CreateResponse(w, Response{
		Message: "guess status",
		Code:    http.StatusOK,
		Data:    view,
	})
}
