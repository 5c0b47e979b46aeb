package engine

import (
	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/gameclock"
	"github.com/jlindmark/floorlive/internal/models"
)

// PenaltyExpiry computes when a penalty issued at the match's current clock
// position runs out. The expiry may land in a later period: the running
// total wraps into the next period every time it crosses a full period
// length, so a two minute penalty called at 19:30 of a 20 minute period
// expires at 01:30 of the following one.
func PenaltyExpiry(m *models.Match, durationMinutes int) models.ClockRef {
	ps := m.Settings.PeriodSeconds()
	abs := gameclock.Absolute(m.Period, gameclock.Parse(m.Time), ps) + durationMinutes*60
	period, secs := gameclock.FromAbsolute(abs, ps)
	return models.ClockRef{Period: period, Time: gameclock.Format(secs)}
}

// PenaltyDue reports whether an active penalty's expiry has been reached by
// the given clock position.
func PenaltyDue(p *models.PenaltyEvent, period int, clockSeconds int, periodSeconds int) bool {
	if p.ExpiresAt == nil {
		return false
	}
	expires := gameclock.Absolute(p.ExpiresAt.Period, gameclock.Parse(p.ExpiresAt.Time), periodSeconds)
	return gameclock.Absolute(period, clockSeconds, periodSeconds) >= expires
}

// ExpireDuePenalties flips every active penalty whose expiry the match clock
// has reached. Returns true if anything changed.
func ExpireDuePenalties(m *models.Match) bool {
	ps := m.Settings.PeriodSeconds()
	cur := gameclock.Parse(m.Time)
	changed := false
	for _, ev := range m.Events {
		p, ok := ev.(*models.PenaltyEvent)
		if !ok || p.Status != models.PenaltyActive {
			continue
		}
		if PenaltyDue(p, m.Period, cur, ps) {
			p.Status = models.PenaltyExpired
			changed = true
		}
	}
	return changed
}

// ForceExpireAllPenalties ends every active penalty regardless of remaining
// time. Used when the match finishes.
func ForceExpireAllPenalties(m *models.Match) {
	for _, ev := range m.Events {
		if p, ok := ev.(*models.PenaltyEvent); ok && p.Status == models.PenaltyActive {
			p.Status = models.PenaltyExpired
		}
	}
}

// cancelEarliestActivePenalty cancels at most one active penalty belonging
// to the given (conceding) team: the one that would have expired first,
// period ascending then mm:ss string compare. One power-play goal ends one
// penalty.
func cancelEarliestActivePenalty(m *models.Match, teamID uuid.UUID) bool {
	var best *models.PenaltyEvent
	for _, ev := range m.Events {
		p, ok := ev.(*models.PenaltyEvent)
		if !ok || p.Status != models.PenaltyActive || p.TeamID != teamID || p.ExpiresAt == nil {
			continue
		}
		if best == nil || expiresBefore(p.ExpiresAt, best.ExpiresAt) {
			best = p
		}
	}
	if best == nil {
		return false
	}
	best.Status = models.PenaltyCancelled
	return true
}

func expiresBefore(a, b *models.ClockRef) bool {
	if a.Period != b.Period {
		return a.Period < b.Period
	}
	return a.Time < b.Time
}
