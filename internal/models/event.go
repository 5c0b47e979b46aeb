package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PenaltyStatus defines the lifecycle state of a penalty.
type PenaltyStatus string

const (
	PenaltyActive    PenaltyStatus = "active"
	PenaltyCancelled PenaltyStatus = "cancelled"
	PenaltyExpired   PenaltyStatus = "expired"
)

// ClockRef is a point on the match timeline: a period number plus a
// period-relative mm:ss clock string.
type ClockRef struct {
	Period int    `json:"period"`
	Time   string `json:"time"`
}

// PlayerRef identifies a player inside an event. Storage keeps only the ID;
// name and number are filled in by hydration against the players collection.
type PlayerRef struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name,omitempty"`
	Number int       `json:"number,omitempty"`
}

// EventMeta carries the fields every match event has.
type EventMeta struct {
	ID     uuid.UUID `json:"id"`
	TeamID uuid.UUID `json:"team_id"`
	Time   string    `json:"time"`
	Period int       `json:"period"`
}

func (m EventMeta) EventID() uuid.UUID { return m.ID }
func (m EventMeta) Team() uuid.UUID    { return m.TeamID }
func (m EventMeta) At() ClockRef       { return ClockRef{Period: m.Period, Time: m.Time} }

// MatchEvent is the closed set of things that can appear in a match's event
// log. Implementations live in this package only.
type MatchEvent interface {
	EventID() uuid.UUID
	Team() uuid.UUID
	At() ClockRef
	eventType() string
}

// GoalEvent records a goal, its scorer, an optional assist, and optionally
// the opposing goalie the goal is charged against.
type GoalEvent struct {
	EventMeta
	Scorer            PlayerRef  `json:"scorer"`
	Assist            *PlayerRef `json:"assist,omitempty"`
	ConcedingGoalieID *uuid.UUID `json:"conceding_goalie_id,omitempty"`
}

// PenaltyEvent records a time-boxed penalty. Status is the only event field
// that is ever mutated in place (active -> cancelled or active -> expired).
type PenaltyEvent struct {
	EventMeta
	Player    PlayerRef     `json:"player"`
	Duration  int           `json:"duration"` // minutes
	Status    PenaltyStatus `json:"status"`
	ExpiresAt *ClockRef     `json:"expires_at"`
}

// SaveEvent records a goalie save.
type SaveEvent struct {
	EventMeta
	Goalie PlayerRef `json:"goalie"`
}

func (*GoalEvent) eventType() string    { return "goal" }
func (*PenaltyEvent) eventType() string { return "penalty" }
func (*SaveEvent) eventType() string    { return "save" }

// EventLog is the append-ordered match event log. It marshals each event
// with a "type" discriminator so the document round-trips through JSONB.
type EventLog []MatchEvent

func (l EventLog) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(l))
	for _, ev := range l {
		switch e := ev.(type) {
		case *GoalEvent:
			out = append(out, struct {
				Type string `json:"type"`
				*GoalEvent
			}{"goal", e})
		case *PenaltyEvent:
			out = append(out, struct {
				Type string `json:"type"`
				*PenaltyEvent
			}{"penalty", e})
		case *SaveEvent:
			out = append(out, struct {
				Type string `json:"type"`
				*SaveEvent
			}{"save", e})
		default:
			return nil, fmt.Errorf("unknown event type %T", ev)
		}
	}
	return json.Marshal(out)
}

func (l *EventLog) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	log := make(EventLog, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return err
		}
		switch head.Type {
		case "goal":
			var e GoalEvent
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			log = append(log, &e)
		case "penalty":
			var e PenaltyEvent
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			log = append(log, &e)
		case "save":
			var e SaveEvent
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			log = append(log, &e)
		default:
			// Unknown event kinds from a newer writer are skipped, not fatal.
			continue
		}
	}
	*l = log
	return nil
}

// Clone deep-copies the log so transforms never alias the source events.
func (l EventLog) Clone() EventLog {
	if l == nil {
		return nil
	}
	out := make(EventLog, len(l))
	for i, ev := range l {
		switch e := ev.(type) {
		case *GoalEvent:
			c := *e
			if e.Assist != nil {
				a := *e.Assist
				c.Assist = &a
			}
			if e.ConcedingGoalieID != nil {
				id := *e.ConcedingGoalieID
				c.ConcedingGoalieID = &id
			}
			out[i] = &c
		case *PenaltyEvent:
			c := *e
			if e.ExpiresAt != nil {
				exp := *e.ExpiresAt
				c.ExpiresAt = &exp
			}
			out[i] = &c
		case *SaveEvent:
			c := *e
			out[i] = &c
		}
	}
	return out
}
