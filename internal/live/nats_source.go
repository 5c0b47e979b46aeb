package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/events"
	"github.com/jlindmark/floorlive/internal/models"
)

// snapshotChan serializes sends against close. Unsubscribe does not wait for
// an in-flight message callback, so teardown must not close the channel out
// from under a callback that is still sending.
type snapshotChan struct {
	mu     sync.Mutex
	ch     chan models.Match
	closed bool
}

func newSnapshotChan(size int) *snapshotChan {
	return &snapshotChan{ch: make(chan models.Match, size)}
}

// send delivers the snapshot without blocking. Reports false when the
// channel is full or already closed.
func (c *snapshotChan) send(m models.Match) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- m:
		return true
	default:
		return false
	}
}

func (c *snapshotChan) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// NATSSource is the push Source: it subscribes to a match's snapshot
// subject and forwards every published document.
type NATSSource struct {
	nc *nats.Conn
}

// NewNATSSource wraps an existing NATS connection.
func NewNATSSource(nc *nats.Conn) *NATSSource {
	return &NATSSource{nc: nc}
}

// Subscribe subscribes to the match's snapshot subject. The subscription is
// torn down and the channel closed when the context ends.
func (s *NATSSource) Subscribe(ctx context.Context, matchID uuid.UUID) (<-chan models.Match, error) {
	out := newSnapshotChan(16)
	sub, err := s.nc.Subscribe(events.SnapshotSubject(matchID), func(msg *nats.Msg) {
		var env events.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("malformed snapshot envelope")
			return
		}
		if env.Type == events.TypeMatchDeleted || len(env.Payload) == 0 {
			return
		}
		var m models.Match
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			log.Error().Err(err).Str("match_id", env.MatchID.String()).Msg("malformed match snapshot")
			return
		}
		if !out.send(m) {
			log.Warn().Str("match_id", env.MatchID.String()).Msg("viewer lagging, snapshot dropped")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", events.SnapshotSubject(matchID), err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("unsubscribe failed")
		}
		out.close()
	}()

	return out.ch, nil
}
