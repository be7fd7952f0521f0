package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/gamesvc/service"
)

type admitPlayerRequest struct {
	ID string `json:"id"`
}

// AdmitPlayerHandler admits or refreshes a player, gated on capacity.
func (h *Handler) AdmitPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req admitPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		h.CreateResponse(w, Response{
			Message: "invalid request",
			Code:    http.StatusBadRequest,
			Error:   "id is required",
		})
		return
	}

	view, err := h.playerService.AdmitOrRefresh(r.Context(), req.ID)
	if err != nil {
		var capErr *service.AtCapacityError
		if errors.As(err, &capErr) {
			h.CreateResponse(w, Response{
				Message: "server is at capacity, try again later",
				Code:    http.StatusServiceUnavailable,
				Data: map[string]interface{}{
					"activeUsers": capErr.ActiveUsers,
					"maxUsers":    capErr.MaxUsers,
				},
				Error: "AtCapacity",
			})
			return
		}

		log.Errorf("admit player %s failed: %v", req.ID, err)
		h.CreateResponse(w, Response{
			Message: "internal error",
			Code:    http.StatusInternalServerError,
			Error:   "internal error",
		})
		return
	}

	h.CreateResponse(w, Response{
		Message: "player admitted",
		Code:    http.StatusOK,
		Data:    view,
	})
}

// GetPlayerHandler returns the player state, creating the player if absent.
func (h *Handler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "id")
	if playerID == "" {
		h.CreateResponse(w, Response{
			Message: "invalid request",
			Code:    http.StatusBadRequest,
			Error:   "id is required",
		})
		return
	}

	view, err := h.playerService.Touch(r.Context(), playerID)
	if err != nil {
		log.Errorf("get player %s failed: %v", playerID, err)
		h.CreateResponse(w, Response{
			Message: "internal error",
			Code:    http.StatusInternalServerError,
			Error:   "internal error",
		})
		return
	}

	h.CreateResponse(w, Response{
		Message: "player state",
		Code:    http.StatusOK,
		Data:    view,
	})
}
