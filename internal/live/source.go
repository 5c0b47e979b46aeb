package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/models"
)

// Source is where a viewer's authoritative snapshots come from. The channel
// closes when the subscription ends; consumers feed every received snapshot
// straight into Viewer.Apply. Both push (NATS) and poll implementations
// satisfy this.
type Source interface {
	Subscribe(ctx context.Context, matchID uuid.UUID) (<-chan models.Match, error)
}

// FetchFunc loads the current authoritative match document.
type FetchFunc func(ctx context.Context, matchID uuid.UUID) (*models.Match, error)

// Poller is the request/response Source: it re-fetches the match on an
// interval. Meant for clients that cannot hold a push subscription.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	clock    clockwork.Clock
}

// NewPoller creates a polling source.
func NewPoller(fetch FetchFunc, interval time.Duration, clock clockwork.Clock) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{fetch: fetch, interval: interval, clock: clock}
}

// Subscribe starts the poll loop. Fetch failures are logged and skipped;
// the viewer simply keeps ticking on its last snapshot until the store is
// reachable again.
func (p *Poller) Subscribe(ctx context.Context, matchID uuid.UUID) (<-chan models.Match, error) {
	ch := make(chan models.Match, 1)
	go func() {
		defer close(ch)
		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()
		p.poll(ctx, matchID, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				p.poll(ctx, matchID, ch)
			}
		}
	}()
	return ch, nil
}

func (p *Poller) poll(ctx context.Context, matchID uuid.UUID, ch chan models.Match) {
	m, err := p.fetch(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("match_id", matchID.String()).Msg("poll fetch failed, keeping last snapshot")
		return
	}
	if m == nil {
		return
	}
	// Latest snapshot wins; a slow consumer only ever sees the freshest one.
	select {
	case ch <- *m:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- *m:
		default:
		}
	}
}

// Run attaches a source to a viewer: it subscribes and applies every
// snapshot until the context ends. Blocks; callers run it in a goroutine.
func Run(ctx context.Context, src Source, matchID uuid.UUID, v *Viewer) error {
	ch, err := src.Subscribe(ctx, matchID)
	if err != nil {
		return err
	}
	v.Start(ctx)
	defer v.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			v.Apply(m)
		}
	}
}
