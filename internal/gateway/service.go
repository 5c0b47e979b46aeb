// Package gateway fans authoritative match snapshots out to websocket
// clients. One live.Viewer runs per watched match so every client gets the
// same smooth one-second ticks without running a timer of its own.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/events"
	"github.com/jlindmark/floorlive/internal/live"
	"github.com/jlindmark/floorlive/internal/models"
)

// Service ties the NATS snapshot feed, the per-match viewers, and the
// websocket connection pools together.
type Service struct {
	cm    *ConnectionManager
	clock clockwork.Clock

	mu      sync.Mutex
	viewers map[uuid.UUID]*live.Viewer
	cancel  context.CancelFunc
	sub     *nats.Subscription
}

// NewService creates a gateway service broadcasting through the given
// connection manager.
func NewService(cm *ConnectionManager) *Service {
	return &Service{
		cm:      cm,
		clock:   clockwork.NewRealClock(),
		viewers: make(map[uuid.UUID]*live.Viewer),
	}
}

// WithClock substitutes the time source driving the per-match viewers.
func (s *Service) WithClock(c clockwork.Clock) *Service {
	s.clock = c
	return s
}

// Start subscribes to the snapshot subjects and begins broadcasting. The
// connection manager must be started separately.
func (s *Service) Start(ctx context.Context, nc *nats.Conn) error {
	runCtx, cancel := context.WithCancel(ctx)

	sub, err := nc.Subscribe(events.SnapshotSubjectWildcard, func(msg *nats.Msg) {
		s.handleEnvelope(runCtx, msg.Data)
	})
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	s.cancel = cancel
	s.sub = sub
	s.mu.Unlock()

	log.Info().Str("subject", events.SnapshotSubjectWildcard).Msg("gateway subscribed to snapshots")
	return nil
}

// Stop unsubscribes and tears down every viewer.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for id, v := range s.viewers {
		v.Stop()
		delete(s.viewers, id)
	}
}

// HandleSnapshot feeds one authoritative snapshot into the gateway:
// broadcast immediately, then let the match's viewer tick it forward. A
// finished match has nothing left to tick, so its viewer is reaped after
// the final snapshot goes out.
func (s *Service) HandleSnapshot(ctx context.Context, m models.Match) {
	s.cm.BroadcastToMatch(m.ID, snapshotFrame(&m))
	if m.Status == models.MatchFinished {
		s.mu.Lock()
		if v, ok := s.viewers[m.ID]; ok {
			v.Stop()
			delete(s.viewers, m.ID)
		}
		s.mu.Unlock()
		return
	}
	s.viewerFor(ctx, m.ID).Apply(m)
}

// HandleDeleted drops the match's viewer and tells clients it is gone.
func (s *Service) HandleDeleted(matchID uuid.UUID) {
	s.mu.Lock()
	if v, ok := s.viewers[matchID]; ok {
		v.Stop()
		delete(s.viewers, matchID)
	}
	s.mu.Unlock()
	s.cm.BroadcastToMatch(matchID, deletedFrame(matchID))
}

func (s *Service) handleEnvelope(ctx context.Context, data []byte) {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Msg("dropping malformed snapshot envelope")
		return
	}
	switch env.Type {
	case events.TypeMatchDeleted:
		s.HandleDeleted(env.MatchID)
	case events.TypeMatchCreated, events.TypeMatchUpdated:
		var m models.Match
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			log.Warn().
				Err(err).
				Str("match_id", env.MatchID.String()).
				Msg("dropping snapshot with malformed payload")
			return
		}
		s.HandleSnapshot(ctx, m)
	default:
		log.Debug().Str("type", env.Type).Msg("ignoring unknown envelope type")
	}
}

// viewerFor returns the match's viewer, starting one on first use.
func (s *Service) viewerFor(ctx context.Context, matchID uuid.UUID) *live.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.viewers[matchID]; ok {
		return v
	}
	v := live.NewViewer(
		live.WithClock(s.clock),
		live.WithOnUpdate(func(view live.View) {
			s.cm.BroadcastToMatch(matchID, tickFrame(&view.Match, view.BreakRemaining))
		}),
	)
	v.Start(ctx)
	s.viewers[matchID] = v
	return v
}

// ServeWS upgrades a client onto a match's frame stream. Route variable:
// {id} is the match ID.
func (s *Service) ServeWS(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}
	if err := s.cm.UpgradeConnection(w, r, matchID); err != nil {
		// Upgrade already wrote the error response.
		return
	}
}
