package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/gameclock"
	"github.com/jlindmark/floorlive/internal/models"
)

// GoalArgs describes a goal to record.
type GoalArgs struct {
	TeamID uuid.UUID
	Scorer models.PlayerRef
	Assist *models.PlayerRef
}

// PenaltyArgs describes a penalty to record.
type PenaltyArgs struct {
	TeamID          uuid.UUID
	Player          models.PlayerRef
	DurationMinutes int
}

// SaveArgs describes a goalie save to record.
type SaveArgs struct {
	TeamID uuid.UUID
	Goalie models.PlayerRef
}

func newMeta(m *models.Match, teamID uuid.UUID) models.EventMeta {
	return models.EventMeta{
		ID:     uuid.New(),
		TeamID: teamID,
		Time:   m.Time,
		Period: m.Period,
	}
}

// AddGoal appends a goal event, charges the conceding team's active goalie,
// cancels the conceding team's earliest-expiring active penalty (at most
// one), and re-derives scores and rosters.
func AddGoal(m *models.Match, args GoalArgs) *models.Match {
	out := m.Clone()
	conceding := out.ConcedingTeamID(args.TeamID)
	ev := &models.GoalEvent{
		EventMeta:         newMeta(out, args.TeamID),
		Scorer:            args.Scorer,
		ConcedingGoalieID: out.ActiveGoalieID(conceding),
	}
	if args.Assist != nil {
		a := *args.Assist
		ev.Assist = &a
	}
	out.Events = append(out.Events, ev)
	cancelEarliestActivePenalty(out, conceding)
	refresh(out)
	return out
}

// RemoveLastGoal removes the most recently appended goal event for the team.
// A penalty the removed goal cancelled stays cancelled; the flip is one-way.
func RemoveLastGoal(m *models.Match, teamID uuid.UUID) *models.Match {
	out := m.Clone()
	if !removeLast(out, teamID, func(ev models.MatchEvent) bool {
		_, ok := ev.(*models.GoalEvent)
		return ok
	}) {
		return out
	}
	refresh(out)
	return out
}

// AddPenalty appends an active penalty with a cross-period expiry computed
// from the current clock position.
func AddPenalty(m *models.Match, args PenaltyArgs) *models.Match {
	out := m.Clone()
	expires := PenaltyExpiry(out, args.DurationMinutes)
	out.Events = append(out.Events, &models.PenaltyEvent{
		EventMeta: newMeta(out, args.TeamID),
		Player:    args.Player,
		Duration:  args.DurationMinutes,
		Status:    models.PenaltyActive,
		ExpiresAt: &expires,
	})
	refresh(out)
	return out
}

// RemoveLastPenalty removes the most recently appended penalty event for the
// team. Score is unaffected; penalty minutes correct themselves on replay.
func RemoveLastPenalty(m *models.Match, teamID uuid.UUID) *models.Match {
	out := m.Clone()
	if !removeLast(out, teamID, func(ev models.MatchEvent) bool {
		_, ok := ev.(*models.PenaltyEvent)
		return ok
	}) {
		return out
	}
	refresh(out)
	return out
}

// AddSave appends a save event for the goalie.
func AddSave(m *models.Match, args SaveArgs) *models.Match {
	out := m.Clone()
	out.Events = append(out.Events, &models.SaveEvent{
		EventMeta: newMeta(out, args.TeamID),
		Goalie:    args.Goalie,
	})
	refresh(out)
	return out
}

func removeLast(m *models.Match, teamID uuid.UUID, match func(models.MatchEvent) bool) bool {
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Team() == teamID && match(m.Events[i]) {
			m.Events = append(m.Events[:i], m.Events[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleClock flips the match between running and not running. Pausing
// captures the displayed (client-ticked) time into the authoritative clock;
// this is the synchronization point between the live view and the store.
// Toggling a finished match is a no-op.
func ToggleClock(m *models.Match, displayed string) *models.Match {
	out := m.Clone()
	switch out.Status {
	case models.MatchFinished:
		return out
	case models.MatchLive:
		secs := gameclock.Parse(displayed)
		if ps := out.Settings.PeriodSeconds(); secs > ps {
			secs = ps
		}
		out.Time = gameclock.Format(secs)
		out.Status = models.MatchPaused
		ExpireDuePenalties(out)
	case models.MatchBreak:
		// New period starts from zero once play resumes.
		out.Time = gameclock.Format(0)
		out.BreakEndTime = nil
		out.Status = models.MatchLive
	default: // upcoming, paused
		out.Status = models.MatchLive
	}
	return out
}

// SetTimeAndPeriod applies the admin "Set" controls. Only legal while the
// match is neither live nor in a break; otherwise a no-op. Out-of-range
// values clamp silently rather than rejecting.
func SetTimeAndPeriod(m *models.Match, minutes, seconds, period int) *models.Match {
	out := m.Clone()
	if out.Status == models.MatchLive || out.Status == models.MatchBreak {
		return out
	}
	minutes = clamp(minutes, 0, out.Settings.PeriodDurationMinutes)
	seconds = clamp(seconds, 0, 59)
	if minutes == out.Settings.PeriodDurationMinutes {
		// The clock cannot read past the period length.
		seconds = 0
	}
	period = clamp(period, 1, out.Settings.TotalPeriods)
	out.Time = gameclock.Format(minutes*60 + seconds)
	out.Period = period
	ExpireDuePenalties(out)
	return out
}

// EndPeriod closes the current period. Before the final period the match
// enters a wall-clock break and the period advances with active penalties
// carried over; on the final period the match finishes, remaining penalties
// are force-expired and the clock shows the full period. Ending a period
// while finished or already in a break is a no-op.
func EndPeriod(m *models.Match, now time.Time) *models.Match {
	out := m.Clone()
	switch out.Status {
	case models.MatchFinished, models.MatchBreak, models.MatchUpcoming:
		return out
	}
	if out.Period >= out.Settings.TotalPeriods {
		ForceExpireAllPenalties(out)
		out.Time = gameclock.Format(out.Settings.PeriodSeconds())
		out.Status = models.MatchFinished
		out.BreakEndTime = nil
		return out
	}
	end := now.Add(time.Duration(out.Settings.BreakDurationMinutes) * time.Minute)
	out.BreakEndTime = &end
	out.Period++
	out.Time = gameclock.Format(0)
	out.Status = models.MatchBreak
	ExpireDuePenalties(out)
	return out
}

// SetActiveGoalie selects the goalie that future goals against the team are
// charged to. A nil goalie clears the selection.
func SetActiveGoalie(m *models.Match, teamID uuid.UUID, goalieID *uuid.UUID) *models.Match {
	out := m.Clone()
	switch teamID {
	case out.TeamA.ID:
		out.ActiveGoalieAID = goalieID
	case out.TeamB.ID:
		out.ActiveGoalieBID = goalieID
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
