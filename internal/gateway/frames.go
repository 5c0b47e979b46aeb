package gateway

import (
	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// FrameType discriminates the messages pushed to websocket clients.
type FrameType string

const (
	// FrameMatchSnapshot carries a full authoritative match document.
	FrameMatchSnapshot FrameType = "match_snapshot"
	// FrameTimerTick carries one second of clock movement. Clients render
	// these between snapshots instead of running their own timer.
	FrameTimerTick FrameType = "timer_tick"
	// FrameMatchDeleted tells clients the match is gone.
	FrameMatchDeleted FrameType = "match_deleted"
)

// Frame is the wire format pushed to clients.
type Frame struct {
	Type           FrameType     `json:"type"`
	MatchID        uuid.UUID     `json:"match_id"`
	Match          *models.Match `json:"match,omitempty"`
	Time           string        `json:"time,omitempty"`
	Period         int           `json:"period,omitempty"`
	Status         string        `json:"status,omitempty"`
	BreakRemaining string        `json:"break_remaining,omitempty"`
}

func snapshotFrame(m *models.Match) *Frame {
	return &Frame{Type: FrameMatchSnapshot, MatchID: m.ID, Match: m}
}

func tickFrame(m *models.Match, breakRemaining string) *Frame {
	return &Frame{
		Type:           FrameTimerTick,
		MatchID:        m.ID,
		Time:           m.Time,
		Period:         m.Period,
		Status:         string(m.Status),
		BreakRemaining: breakRemaining,
	}
}

func deletedFrame(matchID uuid.UUID) *Frame {
	return &Frame{Type: FrameMatchDeleted, MatchID: matchID}
}
