package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/gamesvc/service"
)

// PriceHandler serves the latest sample so the client can bootstrap its chart
// before the live push feed connects.
func (h *Handler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	sample, err := h.priceService.Latest(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrPriceUnavailable) {
			h.CreateResponse(w, Response{
				Message: "price feed not ready, try again shortly",
				Code:    http.StatusServiceUnavailable,
				Error:   "PriceUnavailable",
			})
			return
		}

		log.Errorf("read price failed: %v", err)
		h.CreateResponse(w, Response{
			Message: "internal error",
			Code:    http.StatusInternalServerError,
			Error:   "internal error",
		})
		return
	}

	h.CreateResponse(w, Response{
		Message: "latest price",
		Code:    http.StatusOK,
		Data:    sample,
	})
}
