package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindmark/floorlive/internal/models"
)

var (
	teamAID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	teamBID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	scorerA  = models.PlayerRef{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Name: "Nils Ek", Number: 9}
	assistA  = models.PlayerRef{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002"), Name: "Oskar Lund", Number: 14}
	skaterB  = models.PlayerRef{ID: uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001"), Name: "Teemu Aho", Number: 7}
	goalieB  = models.PlayerRef{ID: uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000099"), Name: "Juho Kivi", Number: 1}
	penalized = models.PlayerRef{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003"), Name: "Erik Palm", Number: 21}
)

func rosterEntry(ref models.PlayerRef, goalie bool) models.RosterPlayer {
	return models.RosterPlayer{ID: ref.ID, Name: ref.Name, Number: ref.Number, Goalie: goalie}
}

func newTestMatch() *models.Match {
	gid := goalieB.ID
	return &models.Match{
		ID:     uuid.New(),
		Status: models.MatchLive,
		TeamA:  models.Team{ID: teamAID, Name: "IBK Falun"},
		TeamB:  models.Team{ID: teamBID, Name: "SC Classic"},
		Period: 1,
		Time:   "00:00",
		Settings: models.MatchSettings{
			TotalPeriods:          3,
			PeriodDurationMinutes: 20,
			BreakDurationMinutes:  15,
		},
		RosterA: []models.RosterPlayer{
			rosterEntry(scorerA, false),
			rosterEntry(assistA, false),
			rosterEntry(penalized, false),
		},
		RosterB: []models.RosterPlayer{
			rosterEntry(skaterB, false),
			rosterEntry(goalieB, true),
		},
		ActiveGoalieBID: &gid,
	}
}

func rosterStats(t *testing.T, roster []models.RosterPlayer, id uuid.UUID) models.MatchStats {
	t.Helper()
	for _, p := range roster {
		if p.ID == id {
			return p.Stats
		}
	}
	t.Fatalf("player %s not in roster", id)
	return models.MatchStats{}
}

func activePenalties(m *models.Match) []*models.PenaltyEvent {
	var out []*models.PenaltyEvent
	for _, ev := range m.Events {
		if p, ok := ev.(*models.PenaltyEvent); ok && p.Status == models.PenaltyActive {
			out = append(out, p)
		}
	}
	return out
}

func TestAddGoalUpdatesScoreAndStats(t *testing.T) {
	m := newTestMatch()
	m.Time = "05:12"

	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA, Assist: &assistA})

	assert.Equal(t, 1, m.ScoreA)
	assert.Equal(t, 0, m.ScoreB)
	require.Len(t, m.Events, 1)

	goal := m.Events[0].(*models.GoalEvent)
	assert.Equal(t, "05:12", goal.Time)
	assert.Equal(t, 1, goal.Period)
	require.NotNil(t, goal.ConcedingGoalieID, "goal against must charge the conceding team's active goalie")
	assert.Equal(t, goalieB.ID, *goal.ConcedingGoalieID)

	assert.Equal(t, 1, rosterStats(t, m.RosterA, scorerA.ID).Goals)
	assert.Equal(t, 1, rosterStats(t, m.RosterA, assistA.ID).Assists)
	assert.Equal(t, 1, rosterStats(t, m.RosterB, goalieB.ID).GoalsAgainst)
}

// Score must equal the replayed goal count at every point of any
// add/remove sequence.
func TestScoreAlwaysMatchesReplay(t *testing.T) {
	m := newTestMatch()

	check := func() {
		p := Project(m)
		assert.Equal(t, m.ScoreA, p.ScoreA)
		assert.Equal(t, m.ScoreB, p.ScoreB)
	}

	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA})
	check()
	m = AddGoal(m, GoalArgs{TeamID: teamBID, Scorer: skaterB})
	check()
	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA, Assist: &assistA})
	check()
	assert.Equal(t, 2, m.ScoreA)
	assert.Equal(t, 1, m.ScoreB)

	m = RemoveLastGoal(m, teamAID)
	check()
	assert.Equal(t, 1, m.ScoreA)

	m = RemoveLastGoal(m, teamBID)
	check()
	assert.Equal(t, 0, m.ScoreB)

	// Removing from an empty side is a no-op.
	m = RemoveLastGoal(m, teamBID)
	check()
	assert.Equal(t, 1, m.ScoreA)
	assert.Equal(t, 0, m.ScoreB)
}

func TestProjectionIsPureAndIdempotent(t *testing.T) {
	m := newTestMatch()
	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA, Assist: &assistA})
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 2})
	m = AddSave(m, SaveArgs{TeamID: teamBID, Goalie: goalieB})

	first := Project(m)
	second := Project(m)
	assert.Equal(t, first, second)

	// Mutating the projection output must not leak into the match.
	first.RosterA[0].Stats.Goals = 99
	assert.Equal(t, 1, rosterStats(t, m.RosterA, scorerA.ID).Goals)
}

// A 2 minute penalty at 19:30 of period 1 (20 min periods)
// expires at 01:30 of period 2.
func TestPenaltyExpiryWrapsPeriods(t *testing.T) {
	m := newTestMatch()
	m.Time = "19:30"

	m = AddPenalty(m, PenaltyArgs{TeamID: teamAID, Player: penalized, DurationMinutes: 2})

	require.Len(t, m.Events, 1)
	p := m.Events[0].(*models.PenaltyEvent)
	require.NotNil(t, p.ExpiresAt)
	assert.Equal(t, 2, p.ExpiresAt.Period)
	assert.Equal(t, "01:30", p.ExpiresAt.Time)
	assert.Equal(t, models.PenaltyActive, p.Status)
	assert.Equal(t, 2, rosterStats(t, m.RosterA, penalized.ID).PenaltyMinutes)
}

func TestPenaltyExpiresExactlyOnTime(t *testing.T) {
	m := newTestMatch()
	m.Time = "10:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamAID, Player: penalized, DurationMinutes: 2})
	p := m.Events[0].(*models.PenaltyEvent)

	// One second short: still active.
	assert.False(t, PenaltyDue(p, 1, 11*60+59, 1200))
	// Exactly due, and at every later tick.
	assert.True(t, PenaltyDue(p, 1, 12*60, 1200))
	assert.True(t, PenaltyDue(p, 1, 12*60+1, 1200))
	assert.True(t, PenaltyDue(p, 2, 0, 1200))
}

func TestGoalCancelsEarliestConcedingPenaltyOnly(t *testing.T) {
	m := newTestMatch()

	// Two active penalties against team B, the second expiring earlier.
	m.Time = "05:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 5})
	m.Time = "06:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: goalieB, DurationMinutes: 2})
	// And one against team A, which must not be touched.
	m = AddPenalty(m, PenaltyArgs{TeamID: teamAID, Player: penalized, DurationMinutes: 2})
	require.Len(t, activePenalties(m), 3)

	// Team A scores: team B is conceding, its earliest-expiring penalty
	// (the 2 minute one, due 08:00) is cancelled. Exactly one flip.
	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA})

	var cancelled, active []uuid.UUID
	for _, ev := range m.Events {
		if p, ok := ev.(*models.PenaltyEvent); ok {
			switch p.Status {
			case models.PenaltyCancelled:
				cancelled = append(cancelled, p.Player.ID)
			case models.PenaltyActive:
				active = append(active, p.Player.ID)
			}
		}
	}
	require.Len(t, cancelled, 1)
	assert.Equal(t, goalieB.ID, cancelled[0])
	assert.ElementsMatch(t, []uuid.UUID{skaterB.ID, penalized.ID}, active)

	// Penalty minutes still count after cancellation.
	assert.Equal(t, 2, rosterStats(t, m.RosterB, goalieB.ID).PenaltyMinutes)
}

func TestGoalWithNoConcedingPenaltiesCancelsNothing(t *testing.T) {
	m := newTestMatch()
	m = AddPenalty(m, PenaltyArgs{TeamID: teamAID, Player: penalized, DurationMinutes: 2})

	// Team A scores; only team B (conceding) penalties are candidates.
	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA})

	require.Len(t, activePenalties(m), 1)
	assert.Equal(t, penalized.ID, activePenalties(m)[0].Player.ID)
}

func TestRemoveLastPenalty(t *testing.T) {
	m := newTestMatch()
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 2})
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: goalieB, DurationMinutes: 5})

	m = RemoveLastPenalty(m, teamBID)

	require.Len(t, m.Events, 1)
	assert.Equal(t, skaterB.ID, m.Events[0].(*models.PenaltyEvent).Player.ID)
	assert.Equal(t, 2, rosterStats(t, m.RosterB, skaterB.ID).PenaltyMinutes)
	assert.Equal(t, 0, rosterStats(t, m.RosterB, goalieB.ID).PenaltyMinutes)
}

func TestToggleClockPauseCapturesDisplayedTime(t *testing.T) {
	m := newTestMatch()
	m.Time = "04:00"

	m = ToggleClock(m, "04:37")

	assert.Equal(t, models.MatchPaused, m.Status)
	assert.Equal(t, "04:37", m.Time)
}

func TestToggleClockClampsDisplayedTime(t *testing.T) {
	m := newTestMatch()

	m = ToggleClock(m, "99:99")

	assert.Equal(t, models.MatchPaused, m.Status)
	assert.Equal(t, "20:00", m.Time)
}

func TestToggleClockResumesAndResumesFromBreak(t *testing.T) {
	m := newTestMatch()
	m.Status = models.MatchPaused
	m.Time = "12:00"

	m = ToggleClock(m, m.Time)
	assert.Equal(t, models.MatchLive, m.Status)
	assert.Equal(t, "12:00", m.Time, "resume keeps the clock")

	end := time.Now().Add(10 * time.Minute)
	m.Status = models.MatchBreak
	m.BreakEndTime = &end
	m.Time = "20:00"

	m = ToggleClock(m, m.Time)
	assert.Equal(t, models.MatchLive, m.Status)
	assert.Equal(t, "00:00", m.Time, "new period starts from zero")
	assert.Nil(t, m.BreakEndTime)
}

func TestToggleClockFinishedIsNoOp(t *testing.T) {
	m := newTestMatch()
	m.Status = models.MatchFinished
	m.Time = "20:00"

	out := ToggleClock(m, "05:00")

	assert.Equal(t, models.MatchFinished, out.Status)
	assert.Equal(t, "20:00", out.Time)
}

func TestPauseExpiresPenaltiesReachedByCapturedTime(t *testing.T) {
	m := newTestMatch()
	m.Time = "05:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 2})

	m = ToggleClock(m, "07:30")

	p := m.Events[0].(*models.PenaltyEvent)
	assert.Equal(t, models.PenaltyExpired, p.Status)
}

func TestEndPeriodEntersBreakAndCarriesPenalties(t *testing.T) {
	m := newTestMatch()
	m.Time = "19:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 5})

	now := time.Date(2025, 11, 8, 19, 0, 0, 0, time.UTC)
	m = EndPeriod(m, now)

	assert.Equal(t, models.MatchBreak, m.Status)
	assert.Equal(t, 2, m.Period)
	assert.Equal(t, "00:00", m.Time)
	require.NotNil(t, m.BreakEndTime)
	assert.Equal(t, now.Add(15*time.Minute), *m.BreakEndTime)

	// The five minute penalty spans the break and stays active.
	require.Len(t, activePenalties(m), 1)
}

// Ending the final period finishes the match, force-expires
// every active penalty and shows a full clock.
func TestEndFinalPeriodFinishesMatch(t *testing.T) {
	m := newTestMatch()
	m.Period = 3
	m.Time = "18:00"
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 5})
	m = AddPenalty(m, PenaltyArgs{TeamID: teamAID, Player: penalized, DurationMinutes: 2})

	m = EndPeriod(m, time.Now())

	assert.Equal(t, models.MatchFinished, m.Status)
	assert.Equal(t, "20:00", m.Time)
	assert.Equal(t, 3, m.Period)
	assert.Empty(t, activePenalties(m))
	for _, ev := range m.Events {
		p := ev.(*models.PenaltyEvent)
		assert.Equal(t, models.PenaltyExpired, p.Status)
	}
}

func TestEndPeriodNoOpStates(t *testing.T) {
	for _, status := range []models.MatchStatus{models.MatchFinished, models.MatchBreak, models.MatchUpcoming} {
		m := newTestMatch()
		m.Status = status
		m.Period = 2
		m.Time = "10:00"

		out := EndPeriod(m, time.Now())

		assert.Equal(t, status, out.Status, "status %s", status)
		assert.Equal(t, 2, out.Period)
		assert.Equal(t, "10:00", out.Time)
	}
}

func TestSetTimeAndPeriodClamps(t *testing.T) {
	m := newTestMatch()
	m.Status = models.MatchPaused

	m = SetTimeAndPeriod(m, 25, 90, 7)

	assert.Equal(t, "20:00", m.Time, "minutes clamp to the period length, seconds forced to zero at full length")
	assert.Equal(t, 3, m.Period, "period clamps to total periods")

	m = SetTimeAndPeriod(m, -3, -10, 0)
	assert.Equal(t, "00:00", m.Time)
	assert.Equal(t, 1, m.Period)

	m = SetTimeAndPeriod(m, 12, 34, 2)
	assert.Equal(t, "12:34", m.Time)
	assert.Equal(t, 2, m.Period)
}

func TestSetTimeAndPeriodIgnoredWhileLiveOrBreak(t *testing.T) {
	for _, status := range []models.MatchStatus{models.MatchLive, models.MatchBreak} {
		m := newTestMatch()
		m.Status = status
		m.Time = "03:00"

		out := SetTimeAndPeriod(m, 10, 0, 2)

		assert.Equal(t, "03:00", out.Time, "status %s", status)
		assert.Equal(t, 1, out.Period)
	}
}

func TestTransformsDoNotMutateInput(t *testing.T) {
	m := newTestMatch()
	m = AddPenalty(m, PenaltyArgs{TeamID: teamBID, Player: skaterB, DurationMinutes: 2})

	before := m.Clone()
	_ = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA})
	_ = EndPeriod(m, time.Now())
	_ = ToggleClock(m, "09:00")

	assert.Equal(t, before.ScoreA, m.ScoreA)
	assert.Equal(t, before.Status, m.Status)
	assert.Equal(t, before.Time, m.Time)
	require.Len(t, m.Events, 1)
	assert.Equal(t, models.PenaltyActive, m.Events[0].(*models.PenaltyEvent).Status)
}

func TestTimelineOrdersForDisplayOnly(t *testing.T) {
	m := newTestMatch()
	m.Period = 2
	m.Time = "03:00"
	m = AddGoal(m, GoalArgs{TeamID: teamAID, Scorer: scorerA})
	// Late correction appended out of temporal order.
	m.Period = 1
	m.Time = "15:00"
	m = AddGoal(m, GoalArgs{TeamID: teamBID, Scorer: skaterB})
	m.Period = 2
	m.Time = "07:45"
	m = AddSave(m, SaveArgs{TeamID: teamBID, Goalie: goalieB})

	tl := Timeline(m)
	require.Len(t, tl, 3)
	assert.Equal(t, models.ClockRef{Period: 2, Time: "07:45"}, tl[0].At())
	assert.Equal(t, models.ClockRef{Period: 2, Time: "03:00"}, tl[1].At())
	assert.Equal(t, models.ClockRef{Period: 1, Time: "15:00"}, tl[2].At())

	// Log order is untouched: replay still sees append order.
	assert.Equal(t, models.ClockRef{Period: 2, Time: "03:00"}, m.Events[0].At())
}
