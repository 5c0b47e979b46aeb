package match

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindmark/floorlive/internal/events"
	"github.com/jlindmark/floorlive/internal/models"
)

type fakeRepo struct {
	matches  map[uuid.UUID]*models.Match
	saved    []string
	failSave bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{matches: make(map[uuid.UUID]*models.Match)}
}

func (r *fakeRepo) CreateMatch(ctx context.Context, m *models.Match) error {
	r.matches[m.ID] = m.Clone()
	r.saved = append(r.saved, events.TypeMatchCreated)
	return nil
}

func (r *fakeRepo) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (r *fakeRepo) ListMatches(ctx context.Context) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		out = append(out, *m.Clone())
	}
	return out, nil
}

func (r *fakeRepo) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		if m.TournamentID != nil && *m.TournamentID == tournamentID {
			out = append(out, *m.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) SaveSnapshot(ctx context.Context, m *models.Match, eventType string) error {
	if r.failSave {
		return errors.New("write failed")
	}
	if _, ok := r.matches[m.ID]; !ok {
		return ErrMatchNotFound
	}
	r.matches[m.ID] = m.Clone()
	r.saved = append(r.saved, eventType)
	return nil
}

func (r *fakeRepo) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(r.matches, id)
	r.saved = append(r.saved, events.TypeMatchDeleted)
	return nil
}

type fakeDirectory struct {
	players     map[uuid.UUID]models.Player
	teams       map[uuid.UUID]models.Team
	adjustments map[uuid.UUID]models.CareerStats
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		players:     make(map[uuid.UUID]models.Player),
		teams:       make(map[uuid.UUID]models.Team),
		adjustments: make(map[uuid.UUID]models.CareerStats),
	}
}

func (d *fakeDirectory) addTeam(name string) models.Team {
	t := models.Team{ID: uuid.New(), Name: name}
	d.teams[t.ID] = t
	return t
}

func (d *fakeDirectory) addPlayer(teamID uuid.UUID, name string, number int, goalie bool) models.Player {
	id := teamID
	p := models.Player{ID: uuid.New(), Name: name, Number: number, Goalie: goalie, TeamID: &id}
	d.players[p.ID] = p
	return p
}

func (d *fakeDirectory) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p, ok := d.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s not found", id)
	}
	return &p, nil
}

func (d *fakeDirectory) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error) {
	var out []models.Player
	for _, p := range d.players {
		if p.TeamID != nil && *p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *fakeDirectory) AdjustCareerStats(ctx context.Context, playerID uuid.UUID, delta models.CareerStats) error {
	cur := d.adjustments[playerID]
	cur.Goals += delta.Goals
	cur.Assists += delta.Assists
	cur.PenaltyMinutes += delta.PenaltyMinutes
	cur.Saves += delta.Saves
	cur.GoalsAgainst += delta.GoalsAgainst
	d.adjustments[playerID] = cur
	return nil
}

func (d *fakeDirectory) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	t, ok := d.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s not found", id)
	}
	return &t, nil
}

type fixture struct {
	app    *App
	repo   *fakeRepo
	dir    *fakeDirectory
	fc     *clockwork.FakeClock
	teamA  models.Team
	teamB  models.Team
	scorer models.Player
	assist models.Player
	goalie models.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newFakeRepo(),
		dir:  newFakeDirectory(),
		fc:   clockwork.NewFakeClock(),
	}
	f.teamA = f.dir.addTeam("IBK Lund")
	f.teamB = f.dir.addTeam("Malmö FBC")
	f.scorer = f.dir.addPlayer(f.teamA.ID, "Anna Berg", 9, false)
	f.assist = f.dir.addPlayer(f.teamA.ID, "Lisa Ek", 14, false)
	f.goalie = f.dir.addPlayer(f.teamB.ID, "Sara Holm", 1, true)
	f.app = NewApp(f.repo, f.dir, f.dir).WithClock(f.fc)
	return f
}

func (f *fixture) createMatch(t *testing.T) *models.Match {
	t.Helper()
	m, err := f.app.CreateMatch(context.Background(), CreateMatchRequest{
		TeamAID: f.teamA.ID,
		TeamBID: f.teamB.ID,
	})
	require.NoError(t, err)
	return m
}

func TestCreateMatchBuildsRosters(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	assert.Equal(t, models.MatchUpcoming, m.Status)
	assert.Equal(t, 1, m.Period)
	assert.Equal(t, "00:00", m.Time)
	assert.Equal(t, 3, m.Settings.TotalPeriods)
	assert.Equal(t, 20, m.Settings.PeriodDurationMinutes)
	assert.Len(t, m.RosterA, 2)
	assert.Len(t, m.RosterB, 1)
	assert.Equal(t, []string{events.TypeMatchCreated}, f.repo.saved)
}

// Non-positive timing values are corrected to the defaults, never stored:
// a zero-period match would make every later clock clamp degenerate.
func TestCreateMatchSanitizesSettings(t *testing.T) {
	f := newFixture(t)

	m, err := f.app.CreateMatch(context.Background(), CreateMatchRequest{
		TeamAID: f.teamA.ID,
		TeamBID: f.teamB.ID,
		Settings: &models.MatchSettings{
			TotalPeriods:          0,
			PeriodDurationMinutes: -5,
			BreakDurationMinutes:  0,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, defaultSettings(), m.Settings)

	// Valid overrides pass through untouched.
	m, err = f.app.CreateMatch(context.Background(), CreateMatchRequest{
		TeamAID: f.teamA.ID,
		TeamBID: f.teamB.ID,
		Settings: &models.MatchSettings{
			TotalPeriods:          2,
			PeriodDurationMinutes: 15,
			BreakDurationMinutes:  0,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Settings.TotalPeriods)
	assert.Equal(t, 15, m.Settings.PeriodDurationMinutes)
	assert.Equal(t, 15, m.Settings.BreakDurationMinutes)
}

func TestAddGoalBumpsCareerStats(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.SetActiveGoalie(context.Background(), m.ID, f.teamB.ID, &f.goalie.ID)
	require.NoError(t, err)

	got, err := f.app.AddGoal(context.Background(), m.ID, GoalRequest{
		TeamID:   f.teamA.ID,
		ScorerID: f.scorer.ID,
		AssistID: &f.assist.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, got.ScoreA)
	assert.Equal(t, 0, got.ScoreB)
	require.Len(t, got.Events, 1)
	goal := got.Events[0].(*models.GoalEvent)
	assert.Equal(t, f.scorer.ID, goal.Scorer.ID)
	require.NotNil(t, goal.ConcedingGoalieID)
	assert.Equal(t, f.goalie.ID, *goal.ConcedingGoalieID)

	assert.Equal(t, models.CareerStats{Goals: 1}, f.dir.adjustments[f.scorer.ID])
	assert.Equal(t, models.CareerStats{Assists: 1}, f.dir.adjustments[f.assist.ID])
	assert.Equal(t, models.CareerStats{GoalsAgainst: 1}, f.dir.adjustments[f.goalie.ID])
}

func TestAddGoalRejectedWhileClockRunning(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.ToggleClock(context.Background(), m.ID, "00:00")
	require.NoError(t, err)

	_, err = f.app.AddGoal(context.Background(), m.ID, GoalRequest{TeamID: f.teamA.ID, ScorerID: f.scorer.ID})
	assert.ErrorIs(t, err, ErrClockRunning)

	stored, err := f.app.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Events)
	assert.Empty(t, f.dir.adjustments)
}

func TestAddPenaltyRejectedWhileClockRunning(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.ToggleClock(context.Background(), m.ID, "00:00")
	require.NoError(t, err)

	_, err = f.app.AddPenalty(context.Background(), m.ID, PenaltyRequest{
		TeamID: f.teamA.ID, PlayerID: f.scorer.ID, DurationMinutes: 2,
	})
	assert.ErrorIs(t, err, ErrClockRunning)
}

func TestRemoveLastGoalReversesCareerStats(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.SetActiveGoalie(context.Background(), m.ID, f.teamB.ID, &f.goalie.ID)
	require.NoError(t, err)
	_, err = f.app.AddGoal(context.Background(), m.ID, GoalRequest{
		TeamID: f.teamA.ID, ScorerID: f.scorer.ID, AssistID: &f.assist.ID,
	})
	require.NoError(t, err)

	got, err := f.app.RemoveLastGoal(context.Background(), m.ID, f.teamA.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, got.ScoreA)
	assert.Empty(t, got.Events)
	assert.Equal(t, models.CareerStats{}, f.dir.adjustments[f.scorer.ID])
	assert.Equal(t, models.CareerStats{}, f.dir.adjustments[f.assist.ID])
	assert.Equal(t, models.CareerStats{}, f.dir.adjustments[f.goalie.ID])
}

func TestPenaltyCareerMinutes(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.AddPenalty(context.Background(), m.ID, PenaltyRequest{
		TeamID: f.teamA.ID, PlayerID: f.scorer.ID, DurationMinutes: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CareerStats{PenaltyMinutes: 2}, f.dir.adjustments[f.scorer.ID])

	_, err = f.app.RemoveLastPenalty(context.Background(), m.ID, f.teamA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CareerStats{}, f.dir.adjustments[f.scorer.ID])
}

func TestAddSaveBumpsCareerSaves(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	got, err := f.app.AddSave(context.Background(), m.ID, SaveRequest{TeamID: f.teamB.ID, GoalieID: f.goalie.ID})
	require.NoError(t, err)

	require.Len(t, got.Events, 1)
	assert.Equal(t, models.CareerStats{Saves: 1}, f.dir.adjustments[f.goalie.ID])
}

func TestWriteFailureLeavesStoredStateUntouched(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)
	f.repo.failSave = true

	_, err := f.app.AddSave(context.Background(), m.ID, SaveRequest{TeamID: f.teamB.ID, GoalieID: f.goalie.ID})
	require.Error(t, err)

	f.repo.failSave = false
	stored, err := f.app.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Events)
	assert.Empty(t, f.dir.adjustments)
}

func TestEndPeriodUsesAppClock(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.ToggleClock(context.Background(), m.ID, "00:00")
	require.NoError(t, err)

	got, err := f.app.EndPeriod(context.Background(), m.ID)
	require.NoError(t, err)

	assert.Equal(t, models.MatchBreak, got.Status)
	assert.Equal(t, 2, got.Period)
	require.NotNil(t, got.BreakEndTime)
	assert.Equal(t, f.fc.Now().Add(15*time.Minute), *got.BreakEndTime)
}

func TestMutationsEnqueueUpdatedEvents(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.ToggleClock(context.Background(), m.ID, "00:00")
	require.NoError(t, err)
	_, err = f.app.ToggleClock(context.Background(), m.ID, "01:30")
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.TypeMatchCreated,
		events.TypeMatchUpdated,
		events.TypeMatchUpdated,
	}, f.repo.saved)
}

func TestHydrateDropsEventsWithUnknownPlayers(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.AddGoal(context.Background(), m.ID, GoalRequest{TeamID: f.teamA.ID, ScorerID: f.scorer.ID})
	require.NoError(t, err)
	ghost := f.dir.addPlayer(f.teamB.ID, "Ghost", 99, false)
	_, err = f.app.AddGoal(context.Background(), m.ID, GoalRequest{TeamID: f.teamB.ID, ScorerID: ghost.ID})
	require.NoError(t, err)

	delete(f.dir.players, ghost.ID)

	got, err := f.app.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, 1, got.ScoreA)
	assert.Equal(t, 0, got.ScoreB, "score replays without the dropped event")
}

func TestHydrateRefreshesRenamedPlayers(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	_, err := f.app.AddGoal(context.Background(), m.ID, GoalRequest{TeamID: f.teamA.ID, ScorerID: f.scorer.ID})
	require.NoError(t, err)

	renamed := f.dir.players[f.scorer.ID]
	renamed.Name = "Anna Berg-Nilsson"
	f.dir.players[f.scorer.ID] = renamed

	got, err := f.app.GetMatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna Berg-Nilsson", got.Events[0].(*models.GoalEvent).Scorer.Name)
}

func TestListDropsMatchesWithUnknownTeams(t *testing.T) {
	f := newFixture(t)
	keep := f.createMatch(t)

	orphanTeam := f.dir.addTeam("Vanishing IBF")
	orphan, err := f.app.CreateMatch(context.Background(), CreateMatchRequest{
		TeamAID: orphanTeam.ID,
		TeamBID: f.teamB.ID,
	})
	require.NoError(t, err)
	delete(f.dir.teams, orphanTeam.ID)

	got, err := f.app.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)
	assert.NotEqual(t, orphan.ID, got[0].ID)
}

func TestDeleteMatch(t *testing.T) {
	f := newFixture(t)
	m := f.createMatch(t)

	require.NoError(t, f.app.DeleteMatch(context.Background(), m.ID))
	_, err := f.app.GetMatch(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.ErrorIs(t, f.app.DeleteMatch(context.Background(), m.ID), ErrMatchNotFound)
}
