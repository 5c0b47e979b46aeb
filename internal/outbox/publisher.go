package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/events"
)

// EventPublisher delivers an outbox event to whatever fanout mechanism is
// configured.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NATSPublisher publishes snapshot envelopes to the match's NATS subject.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	env := events.Envelope{
		EventID:   event.ID,
		MatchID:   event.MatchID,
		Type:      event.EventType,
		Timestamp: event.CreatedAt,
		Payload:   event.Payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot envelope: %w", err)
	}
	if err := p.nc.Publish(events.SnapshotSubject(event.MatchID), data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	return nil
}

// LogPublisher is a publisher for running without a broker. Events are
// logged and dropped.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("match_id", event.MatchID.String()).
		Msg("publishing event")
	return nil
}
