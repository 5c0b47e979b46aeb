// Package engine holds the pure match rules: the event-log projection, the
// penalty lifecycle math, and the phase transforms. Every function takes a
// match document and returns a new one; nothing here touches storage, the
// wall clock is always passed in.
package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// Projection is the derived state of a match: scores plus roster snapshots
// with per-match stats replayed from the event log.
type Projection struct {
	ScoreA  int
	ScoreB  int
	RosterA []models.RosterPlayer
	RosterB []models.RosterPlayer
}

// Project replays the event log in append order and returns fresh derived
// state. The input match is not mutated; projecting twice yields identical
// results.
func Project(m *models.Match) Projection {
	stats := make(map[uuid.UUID]*models.MatchStats)
	get := func(id uuid.UUID) *models.MatchStats {
		s, ok := stats[id]
		if !ok {
			s = &models.MatchStats{}
			stats[id] = s
		}
		return s
	}

	var scoreA, scoreB int
	for _, ev := range m.Events {
		switch e := ev.(type) {
		case *models.GoalEvent:
			switch e.TeamID {
			case m.TeamA.ID:
				scoreA++
			case m.TeamB.ID:
				scoreB++
			}
			get(e.Scorer.ID).Goals++
			if e.Assist != nil {
				get(e.Assist.ID).Assists++
			}
			if e.ConcedingGoalieID != nil {
				get(*e.ConcedingGoalieID).GoalsAgainst++
			}
		case *models.PenaltyEvent:
			// Minutes count from the moment the penalty is called; a later
			// cancellation or expiry only changes whether it is being served.
			get(e.Player.ID).PenaltyMinutes += e.Duration
		case *models.SaveEvent:
			get(e.Goalie.ID).Saves++
		}
	}

	return Projection{
		ScoreA:  scoreA,
		ScoreB:  scoreB,
		RosterA: replayRoster(m.RosterA, stats),
		RosterB: replayRoster(m.RosterB, stats),
	}
}

// replayRoster returns a fresh roster with stats zeroed and then filled from
// the replayed totals. Source entries are never mutated.
func replayRoster(roster []models.RosterPlayer, stats map[uuid.UUID]*models.MatchStats) []models.RosterPlayer {
	out := make([]models.RosterPlayer, len(roster))
	for i, p := range roster {
		p.Stats = models.MatchStats{}
		if s, ok := stats[p.ID]; ok {
			p.Stats = *s
		}
		out[i] = p
	}
	return out
}

// Timeline returns the events ordered for display: latest period first, then
// latest time first. This is a read-only view; replay always uses log order.
func Timeline(m *models.Match) []models.MatchEvent {
	out := make([]models.MatchEvent, len(m.Events))
	copy(out, m.Events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].At(), out[j].At()
		if a.Period != b.Period {
			return a.Period > b.Period
		}
		// Zero-padded mm:ss strings compare correctly as strings.
		return a.Time > b.Time
	})
	return out
}

// refresh re-derives scores and rosters on a match the transforms have just
// edited, so the stored document always agrees with its own log.
func refresh(m *models.Match) {
	p := Project(m)
	m.ScoreA = p.ScoreA
	m.ScoreB = p.ScoreB
	m.RosterA = p.RosterA
	m.RosterB = p.RosterB
}
