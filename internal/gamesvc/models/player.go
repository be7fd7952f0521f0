package models

import (
	"time"
)

// Player represents the players table in the database.
// The identifier is opaque and client-generated; players are never deleted.
type Player struct {
	PlayerID     string    `json:"player_id"`
	Score        int64     `json:"score"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}
