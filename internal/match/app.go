package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/engine"
	"github.com/jlindmark/floorlive/internal/events"
	"github.com/jlindmark/floorlive/internal/gameclock"
	"github.com/jlindmark/floorlive/internal/models"
)

// ErrClockRunning is returned when an operation requires the clock to be
// stopped. Goals and penalties carry the paused clock reading as their
// timestamp, so they cannot be entered while the clock runs.
var ErrClockRunning = errors.New("clock is running")

// MatchRepository defines what the app layer needs from the repository.
type MatchRepository interface {
	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Match, error)
	SaveSnapshot(ctx context.Context, m *models.Match, eventType string) error
	DeleteMatch(ctx context.Context, id uuid.UUID) error
}

// PlayerDirectory resolves player identities and keeps career totals.
type PlayerDirectory interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error)
	AdjustCareerStats(ctx context.Context, playerID uuid.UUID, delta models.CareerStats) error
}

// TeamDirectory resolves team identities.
type TeamDirectory interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

// CreateMatchRequest carries everything needed to set up a match.
type CreateMatchRequest struct {
	TeamAID      uuid.UUID
	TeamBID      uuid.UUID
	Settings     *models.MatchSettings
	TournamentID *uuid.UUID
	GroupID      *uuid.UUID
	ScheduledAt  *time.Time
}

// GoalRequest records a goal for a team.
type GoalRequest struct {
	TeamID   uuid.UUID
	ScorerID uuid.UUID
	AssistID *uuid.UUID
}

// PenaltyRequest records a penalty against a player.
type PenaltyRequest struct {
	TeamID          uuid.UUID
	PlayerID        uuid.UUID
	DurationMinutes int
}

// SaveRequest records a goalie save.
type SaveRequest struct {
	TeamID   uuid.UUID
	GoalieID uuid.UUID
}

func defaultSettings() models.MatchSettings {
	return models.MatchSettings{
		TotalPeriods:          3,
		PeriodDurationMinutes: 20,
		BreakDurationMinutes:  15,
	}
}

// sanitizeSettings silently replaces non-positive timing values with the
// defaults. Bad values are corrected, not rejected, like every other out of
// range input on the clock.
func sanitizeSettings(s models.MatchSettings) models.MatchSettings {
	def := defaultSettings()
	if s.TotalPeriods <= 0 {
		s.TotalPeriods = def.TotalPeriods
	}
	if s.PeriodDurationMinutes <= 0 {
		s.PeriodDurationMinutes = def.PeriodDurationMinutes
	}
	if s.BreakDurationMinutes <= 0 {
		s.BreakDurationMinutes = def.BreakDurationMinutes
	}
	return s
}

// App owns the read-modify-replace cycle for match documents. Every
// mutation loads the stored snapshot, applies a pure transform, and replaces
// the document whole; a failed write leaves nothing half-applied.
type App struct {
	repo    MatchRepository
	players PlayerDirectory
	teams   TeamDirectory
	clock   clockwork.Clock
}

func NewApp(repo MatchRepository, players PlayerDirectory, teams TeamDirectory) *App {
	return &App{
		repo:    repo,
		players: players,
		teams:   teams,
		clock:   clockwork.NewRealClock(),
	}
}

// WithClock substitutes the time source. Tests pass a fake clock.
func (a *App) WithClock(c clockwork.Clock) *App {
	a.clock = c
	return a
}

// CreateMatch sets up a new match with rosters snapshotted from the two
// teams' current player lists.
func (a *App) CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	teamA, err := a.teams.GetTeam(ctx, req.TeamAID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team A: %w", err)
	}
	teamB, err := a.teams.GetTeam(ctx, req.TeamBID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team B: %w", err)
	}

	settings := defaultSettings()
	if req.Settings != nil {
		settings = sanitizeSettings(*req.Settings)
	}

	rosterA, err := a.buildRoster(ctx, req.TeamAID)
	if err != nil {
		return nil, err
	}
	rosterB, err := a.buildRoster(ctx, req.TeamBID)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	m := &models.Match{
		ID:           uuid.New(),
		Status:       models.MatchUpcoming,
		TeamA:        *teamA,
		TeamB:        *teamB,
		Period:       1,
		Time:         gameclock.Format(0),
		Settings:     settings,
		Events:       models.EventLog{},
		RosterA:      rosterA,
		RosterB:      rosterB,
		TournamentID: req.TournamentID,
		GroupID:      req.GroupID,
		ScheduledAt:  req.ScheduledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.repo.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	log.Info().
		Str("match_id", m.ID.String()).
		Str("team_a", teamA.Name).
		Str("team_b", teamB.Name).
		Msg("created match")
	return m, nil
}

func (a *App) buildRoster(ctx context.Context, teamID uuid.UUID) ([]models.RosterPlayer, error) {
	players, err := a.players.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster: %w", err)
	}
	roster := make([]models.RosterPlayer, len(players))
	for i, p := range players {
		roster[i] = models.RosterPlayer{
			ID:     p.ID,
			Name:   p.Name,
			Number: p.Number,
			Goalie: p.Goalie,
		}
	}
	return roster, nil
}

// GetMatch retrieves one match, hydrated against the current registries.
func (a *App) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	a.hydrate(ctx, m)
	return m, nil
}

// ListMatches retrieves all matches. Matches whose teams no longer resolve
// are dropped from the result rather than failing the whole listing.
func (a *App) ListMatches(ctx context.Context) ([]models.Match, error) {
	matches, err := a.repo.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	return a.hydrateList(ctx, matches), nil
}

// ListMatchesByTournament retrieves a tournament's matches.
func (a *App) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Match, error) {
	matches, err := a.repo.ListMatchesByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return a.hydrateList(ctx, matches), nil
}

// DeleteMatch removes the match and notifies watchers.
func (a *App) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteMatch(ctx, id); err != nil {
		return err
	}
	log.Info().Str("match_id", id.String()).Msg("deleted match")
	return nil
}

// mutate runs one read-modify-replace cycle. The transform works on a clone;
// if the replace fails the mutated state is discarded and the stored
// document stands.
func (a *App) mutate(ctx context.Context, id uuid.UUID, fn func(*models.Match) *models.Match) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	next := fn(m)
	next.UpdatedAt = a.clock.Now()
	if err := a.repo.SaveSnapshot(ctx, next, events.TypeMatchUpdated); err != nil {
		return nil, fmt.Errorf("failed to save match snapshot: %w", err)
	}
	return next, nil
}

// AddGoal records a goal. Rejected while the clock runs: the event timestamp
// is the paused clock reading.
func (a *App) AddGoal(ctx context.Context, matchID uuid.UUID, req GoalRequest) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MatchLive {
		return nil, ErrClockRunning
	}

	scorer, err := a.playerRef(ctx, req.ScorerID)
	if err != nil {
		return nil, err
	}
	args := engine.GoalArgs{TeamID: req.TeamID, Scorer: scorer}
	if req.AssistID != nil {
		assist, err := a.playerRef(ctx, *req.AssistID)
		if err != nil {
			return nil, err
		}
		args.Assist = &assist
	}

	concedingGoalie := m.ActiveGoalieID(m.ConcedingTeamID(req.TeamID))

	next := engine.AddGoal(m, args)
	next.UpdatedAt = a.clock.Now()
	if err := a.repo.SaveSnapshot(ctx, next, events.TypeMatchUpdated); err != nil {
		return nil, fmt.Errorf("failed to save match snapshot: %w", err)
	}

	a.bumpCareer(ctx, scorer.ID, models.CareerStats{Goals: 1})
	if args.Assist != nil {
		a.bumpCareer(ctx, args.Assist.ID, models.CareerStats{Assists: 1})
	}
	if concedingGoalie != nil {
		a.bumpCareer(ctx, *concedingGoalie, models.CareerStats{GoalsAgainst: 1})
	}
	return next, nil
}

// RemoveLastGoal removes the team's most recent goal and reverses the career
// totals it granted. A penalty the goal cancelled stays cancelled.
func (a *App) RemoveLastGoal(ctx context.Context, matchID, teamID uuid.UUID) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	removed := lastEvent[*models.GoalEvent](m, teamID)

	next := engine.RemoveLastGoal(m, teamID)
	next.UpdatedAt = a.clock.Now()
	if err := a.repo.SaveSnapshot(ctx, next, events.TypeMatchUpdated); err != nil {
		return nil, fmt.Errorf("failed to save match snapshot: %w", err)
	}

	if removed != nil {
		a.bumpCareer(ctx, removed.Scorer.ID, models.CareerStats{Goals: -1})
		if removed.Assist != nil {
			a.bumpCareer(ctx, removed.Assist.ID, models.CareerStats{Assists: -1})
		}
		if removed.ConcedingGoalieID != nil {
			a.bumpCareer(ctx, *removed.ConcedingGoalieID, models.CareerStats{GoalsAgainst: -1})
		}
	}
	return next, nil
}

// AddPenalty records a time-boxed penalty. Rejected while the clock runs.
func (a *App) AddPenalty(ctx context.Context, matchID uuid.UUID, req PenaltyRequest) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MatchLive {
		return nil, ErrClockRunning
	}

	player, err := a.playerRef(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	next := engine.AddPenalty(m, engine.PenaltyArgs{
		TeamID:          req.TeamID,
		Player:          player,
		DurationMinutes: req.DurationMinutes,
	})
	next.UpdatedAt = a.clock.Now()
	if err := a.repo.SaveSnapshot(ctx, next, events.TypeMatchUpdated); err != nil {
		return nil, fmt.Errorf("failed to save match snapshot: %w", err)
	}

	a.bumpCareer(ctx, player.ID, models.CareerStats{PenaltyMinutes: req.DurationMinutes})
	return next, nil
}

// RemoveLastPenalty removes the team's most recent penalty and reverses its
// career minutes.
func (a *App) RemoveLastPenalty(ctx context.Context, matchID, teamID uuid.UUID) (*models.Match, error) {
	m, err := a.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	removed := lastEvent[*models.PenaltyEvent](m, teamID)

	next := engine.RemoveLastPenalty(m, teamID)
	next.UpdatedAt = a.clock.Now()
	if err := a.repo.SaveSnapshot(ctx, next, events.TypeMatchUpdated); err != nil {
		return nil, fmt.Errorf("failed to save match snapshot: %w", err)
	}

	if removed != nil {
		a.bumpCareer(ctx, removed.Player.ID, models.CareerStats{PenaltyMinutes: -removed.Duration})
	}
	return next, nil
}

// AddSave records a goalie save.
func (a *App) AddSave(ctx context.Context, matchID uuid.UUID, req SaveRequest) (*models.Match, error) {
	goalie, err := a.playerRef(ctx, req.GoalieID)
	if err != nil {
		return nil, err
	}
	next, err := a.mutate(ctx, matchID, func(m *models.Match) *models.Match {
		return engine.AddSave(m, engine.SaveArgs{TeamID: req.TeamID, Goalie: goalie})
	})
	if err != nil {
		return nil, err
	}
	a.bumpCareer(ctx, goalie.ID, models.CareerStats{Saves: 1})
	return next, nil
}

// ToggleClock starts or stops the clock. The displayed time is the client's
// locally ticked reading and becomes authoritative on pause.
func (a *App) ToggleClock(ctx context.Context, matchID uuid.UUID, displayed string) (*models.Match, error) {
	return a.mutate(ctx, matchID, func(m *models.Match) *models.Match {
		return engine.ToggleClock(m, displayed)
	})
}

// SetTimeAndPeriod applies the manual clock controls.
func (a *App) SetTimeAndPeriod(ctx context.Context, matchID uuid.UUID, minutes, seconds, period int) (*models.Match, error) {
	return a.mutate(ctx, matchID, func(m *models.Match) *models.Match {
		return engine.SetTimeAndPeriod(m, minutes, seconds, period)
	})
}

// EndPeriod closes the current period, entering a break or finishing the
// match.
func (a *App) EndPeriod(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	now := a.clock.Now()
	return a.mutate(ctx, matchID, func(m *models.Match) *models.Match {
		return engine.EndPeriod(m, now)
	})
}

// SetActiveGoalie selects which goalie future goals against the team are
// charged to.
func (a *App) SetActiveGoalie(ctx context.Context, matchID, teamID uuid.UUID, goalieID *uuid.UUID) (*models.Match, error) {
	return a.mutate(ctx, matchID, func(m *models.Match) *models.Match {
		return engine.SetActiveGoalie(m, teamID, goalieID)
	})
}

func (a *App) playerRef(ctx context.Context, id uuid.UUID) (models.PlayerRef, error) {
	p, err := a.players.GetPlayer(ctx, id)
	if err != nil {
		return models.PlayerRef{}, fmt.Errorf("failed to resolve player: %w", err)
	}
	return models.PlayerRef{ID: p.ID, Name: p.Name, Number: p.Number}, nil
}

// bumpCareer adjusts a player's career totals. The match snapshot is already
// committed at this point, so a failed bump is logged, not rolled back.
func (a *App) bumpCareer(ctx context.Context, playerID uuid.UUID, delta models.CareerStats) {
	if err := a.players.AdjustCareerStats(ctx, playerID, delta); err != nil {
		log.Warn().
			Err(err).
			Str("player_id", playerID.String()).
			Msg("failed to adjust career stats")
	}
}

// lastEvent returns the team's most recent event of type E, or nil.
func lastEvent[E models.MatchEvent](m *models.Match, teamID uuid.UUID) E {
	var zero E
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Team() != teamID {
			continue
		}
		if ev, ok := m.Events[i].(E); ok {
			return ev
		}
	}
	return zero
}
