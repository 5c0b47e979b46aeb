package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus defines the phase of a match.
type MatchStatus string

const (
	MatchUpcoming MatchStatus = "upcoming"
	MatchLive     MatchStatus = "live"
	MatchPaused   MatchStatus = "paused"
	MatchBreak    MatchStatus = "break"
	MatchFinished MatchStatus = "finished"
)

// MatchSettings holds the timing configuration for a match.
type MatchSettings struct {
	TotalPeriods          int `json:"total_periods"`
	PeriodDurationMinutes int `json:"period_duration_minutes"`
	BreakDurationMinutes  int `json:"break_duration_minutes"`
}

// PeriodSeconds returns the length of one period in seconds.
func (s MatchSettings) PeriodSeconds() int {
	return s.PeriodDurationMinutes * 60
}

// Match is the full match document. It is stored and replaced whole; scores
// and rosters are derived from the event log and re-computed on every
// mutation, never edited independently.
type Match struct {
	ID              uuid.UUID      `json:"id"`
	Status          MatchStatus    `json:"status"`
	TeamA           Team           `json:"team_a"`
	TeamB           Team           `json:"team_b"`
	ScoreA          int            `json:"score_a"`
	ScoreB          int            `json:"score_b"`
	Period          int            `json:"period"`
	Time            string         `json:"time"` // mm:ss within the current period
	Settings        MatchSettings  `json:"settings"`
	BreakEndTime    *time.Time     `json:"break_end_time,omitempty"`
	Events          EventLog       `json:"events"`
	RosterA         []RosterPlayer `json:"roster_a"`
	RosterB         []RosterPlayer `json:"roster_b"`
	ActiveGoalieAID *uuid.UUID     `json:"active_goalie_a_id,omitempty"`
	ActiveGoalieBID *uuid.UUID     `json:"active_goalie_b_id,omitempty"`
	TournamentID    *uuid.UUID     `json:"tournament_id,omitempty"`
	GroupID         *uuid.UUID     `json:"group_id,omitempty"`
	ScheduledAt     *time.Time     `json:"scheduled_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ConcedingTeamID returns the team a goal counts against.
func (m *Match) ConcedingTeamID(scoringTeamID uuid.UUID) uuid.UUID {
	if scoringTeamID == m.TeamA.ID {
		return m.TeamB.ID
	}
	return m.TeamA.ID
}

// ActiveGoalieID returns the currently selected goalie for the given team,
// or nil if none is set.
func (m *Match) ActiveGoalieID(teamID uuid.UUID) *uuid.UUID {
	if teamID == m.TeamA.ID {
		return m.ActiveGoalieAID
	}
	if teamID == m.TeamB.ID {
		return m.ActiveGoalieBID
	}
	return nil
}

// Clone deep-copies the match so pure transforms can build a new document
// without touching the input.
func (m *Match) Clone() *Match {
	c := *m
	c.Events = m.Events.Clone()
	c.RosterA = append([]RosterPlayer(nil), m.RosterA...)
	c.RosterB = append([]RosterPlayer(nil), m.RosterB...)
	c.BreakEndTime = cloneTime(m.BreakEndTime)
	c.ScheduledAt = cloneTime(m.ScheduledAt)
	c.ActiveGoalieAID = cloneUUID(m.ActiveGoalieAID)
	c.ActiveGoalieBID = cloneUUID(m.ActiveGoalieBID)
	c.TournamentID = cloneUUID(m.TournamentID)
	c.GroupID = cloneUUID(m.GroupID)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
