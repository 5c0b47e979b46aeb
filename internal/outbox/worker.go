package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store is the slice of the repository the worker needs. The Postgres
// Repository satisfies it; tests use an in-memory implementation.
type Store interface {
	FetchUnsent(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, ids []uuid.UUID) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Worker polls the outbox table and relays unpublished events to the
// publisher. Events stay in the table until publishing succeeds, so a broker
// outage delays fanout instead of losing it.
type Worker struct {
	store     Store
	publisher EventPublisher
	config    Config
	clock     clockwork.Clock

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(store Store, publisher EventPublisher, cfg Config) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		config:    cfg,
		clock:     clockwork.NewRealClock(),
		stopChan:  make(chan struct{}),
	}
}

// WithWorkerClock substitutes the time source. Tests pass a fake clock.
func (w *Worker) WithWorkerClock(c clockwork.Clock) *Worker {
	w.clock = c
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("outbox worker started")
	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.Chan():
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	events, err := w.store.FetchUnsent(ctx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent outbox events")
		return
	}
	if len(events) == 0 {
		return
	}

	var sentIDs []uuid.UUID
	for _, ev := range events {
		if err := w.publishWithRetry(ctx, ev); err != nil {
			log.Error().
				Err(err).
				Str("event_id", ev.ID.String()).
				Str("event_type", ev.EventType).
				Msg("failed to publish outbox event")
			continue
		}
		sentIDs = append(sentIDs, ev.ID)
	}

	if len(sentIDs) > 0 {
		if err := w.store.MarkSent(ctx, sentIDs); err != nil {
			log.Error().Err(err).Msg("failed to mark outbox events as sent")
			return
		}
	}

	log.Debug().
		Int("total", len(events)).
		Int("sent", len(sentIDs)).
		Msg("processed outbox batch")
}

func (w *Worker) publishWithRetry(ctx context.Context, ev Event) error {
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.clock.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}
		if err := w.publisher.Publish(ctx, ev); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", ev.ID.String()).
				Int("attempt", attempt+1).
				Msg("failed to publish outbox event, retrying")
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
