// Package events defines the envelope and subjects used to push match
// snapshots from the authoritative store to everything that watches it.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types carried on the snapshot subjects.
const (
	TypeMatchCreated = "MatchCreated"
	TypeMatchUpdated = "MatchUpdated"
	TypeMatchDeleted = "MatchDeleted"
)

// SnapshotSubjectPrefix is the NATS subject space for match snapshots.
const SnapshotSubjectPrefix = "match.snapshots."

// SnapshotSubjectWildcard subscribes to every match.
const SnapshotSubjectWildcard = SnapshotSubjectPrefix + ">"

// SnapshotSubject returns the subject a single match's snapshots are
// published on.
func SnapshotSubject(matchID uuid.UUID) string {
	return SnapshotSubjectPrefix + matchID.String()
}

// Envelope wraps every published event. For MatchCreated/MatchUpdated the
// payload is the full match document; deletes carry no payload.
type Envelope struct {
	EventID   uuid.UUID       `json:"event_id"`
	MatchID   uuid.UUID       `json:"match_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
