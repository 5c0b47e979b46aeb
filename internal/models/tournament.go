package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentGroup is a named group of teams inside a tournament.
type TournamentGroup struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Teams []uuid.UUID `json:"teams"`
}

// Tournament groups matches for presentation. Standings are computed by the
// presentation layer, not here.
type Tournament struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Groups    []TournamentGroup `json:"groups"`
	CreatedAt time.Time         `json:"created_at"`
}
