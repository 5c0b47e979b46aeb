package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a floorball team.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"created_at"`
}
