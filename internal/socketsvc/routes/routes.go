package routes

import (
	"time"

	"github.com/go-chi/chi"

	"github.com/updown-labs/updown-services/internal/socketsvc/handlers"
	"github.com/updown-labs/updown-services/internal/socketsvc/ws"
)

func SetRoutes(r *chi.Mux, hub *ws.Hub, pushInterval time.Duration) {
	h := handlers.NewHandler(hub, pushInterval)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		r.Get("/health", h.HealthHandler)
	})
}
