package models

import (
	"time"

	"github.com/google/uuid"
)

// CareerStats are the running totals stored on the player record itself.
// They are mutated incrementally by admin actions across a player's career
// and are never derived from a single match's event log.
type CareerStats struct {
	Goals          int `json:"goals"`
	Assists        int `json:"assists"`
	PenaltyMinutes int `json:"penalty_minutes"`
	Saves          int `json:"saves,omitempty"`
	GoalsAgainst   int `json:"goals_against,omitempty"`
}

// MatchStats are per-match totals. They only ever exist as the output of
// replaying one match's event log and are a distinct type from CareerStats
// on purpose: the two represent different things and must not share storage.
type MatchStats struct {
	Goals          int `json:"goals"`
	Assists        int `json:"assists"`
	PenaltyMinutes int `json:"penalty_minutes"`
	Saves          int `json:"saves,omitempty"`
	GoalsAgainst   int `json:"goals_against,omitempty"`
}

// Player represents a registered player. A nil TeamID means the player sits
// in the unassigned bank.
type Player struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Number    int         `json:"number"`
	Goalie    bool        `json:"goalie,omitempty"`
	TeamID    *uuid.UUID  `json:"team_id,omitempty"`
	Stats     CareerStats `json:"stats"`
	CreatedAt time.Time   `json:"created_at"`
}

// RosterPlayer is one row of a match roster snapshot: player identity plus
// stats replayed from that match's event log.
type RosterPlayer struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Number int        `json:"number"`
	Goalie bool       `json:"goalie,omitempty"`
	Stats  MatchStats `json:"stats"`
}
