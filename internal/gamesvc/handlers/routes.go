package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes: every core-facing call carries the shared-secret
		// credential; HMAC verification keeps the comparison constant-time
		// and a bad or missing token gets a bare 401.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/players", h.AdmitPlayerHandler)
			r.Get("/players/{id}", h.GetPlayerHandler)

			r.Post("/guesses", h.SubmitGuessHandler)
			r.Get("/guesses/{id}", h.GuessStatusHandler)

			r.Get("/price", h.PriceHandler)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("GAME_SHARED_SECRET")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
