package match

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/engine"
	"github.com/jlindmark/floorlive/internal/models"
)

// hydrate refreshes the identities embedded in a stored document against the
// current registries: team names and logos, player names and numbers inside
// events and rosters. An event whose player no longer resolves is dropped
// from the view, and the derived state is replayed so scores stay consistent
// with what remains.
func (a *App) hydrate(ctx context.Context, m *models.Match) {
	if teamA, err := a.teams.GetTeam(ctx, m.TeamA.ID); err == nil {
		m.TeamA = *teamA
	}
	if teamB, err := a.teams.GetTeam(ctx, m.TeamB.ID); err == nil {
		m.TeamB = *teamB
	}

	resolved := make(models.EventLog, 0, len(m.Events))
	dropped := 0
	for _, ev := range m.Events {
		if a.resolveEvent(ctx, ev) {
			resolved = append(resolved, ev)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warn().
			Str("match_id", m.ID.String()).
			Int("dropped", dropped).
			Msg("dropped events referencing unknown players")
	}
	m.Events = resolved

	a.refreshRoster(ctx, m.RosterA)
	a.refreshRoster(ctx, m.RosterB)

	p := engine.Project(m)
	m.ScoreA = p.ScoreA
	m.ScoreB = p.ScoreB
	m.RosterA = p.RosterA
	m.RosterB = p.RosterB
}

// hydrateList hydrates each match and drops those whose teams no longer
// resolve instead of failing the listing.
func (a *App) hydrateList(ctx context.Context, matches []models.Match) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		if !a.teamsResolve(ctx, m) {
			log.Warn().Str("match_id", m.ID.String()).Msg("dropped match referencing unknown team")
			continue
		}
		a.hydrate(ctx, m)
		out = append(out, *m)
	}
	return out
}

func (a *App) teamsResolve(ctx context.Context, m *models.Match) bool {
	if _, err := a.teams.GetTeam(ctx, m.TeamA.ID); err != nil {
		return false
	}
	if _, err := a.teams.GetTeam(ctx, m.TeamB.ID); err != nil {
		return false
	}
	return true
}

// resolveEvent refreshes every player reference inside the event. Reports
// false if any required reference is unknown.
func (a *App) resolveEvent(ctx context.Context, ev models.MatchEvent) bool {
	switch e := ev.(type) {
	case *models.GoalEvent:
		if !a.resolveRef(ctx, &e.Scorer) {
			return false
		}
		if e.Assist != nil && !a.resolveRef(ctx, e.Assist) {
			return false
		}
		return true
	case *models.PenaltyEvent:
		return a.resolveRef(ctx, &e.Player)
	case *models.SaveEvent:
		return a.resolveRef(ctx, &e.Goalie)
	default:
		return false
	}
}

func (a *App) resolveRef(ctx context.Context, ref *models.PlayerRef) bool {
	p, err := a.players.GetPlayer(ctx, ref.ID)
	if err != nil {
		return false
	}
	ref.Name = p.Name
	ref.Number = p.Number
	return true
}

func (a *App) refreshRoster(ctx context.Context, roster []models.RosterPlayer) {
	for i := range roster {
		if p, err := a.players.GetPlayer(ctx, roster[i].ID); err == nil {
			roster[i].Name = p.Name
			roster[i].Number = p.Number
			roster[i].Goalie = p.Goalie
		}
	}
}
