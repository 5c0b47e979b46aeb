package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindmark/floorlive/internal/models"
)

// scriptedFetch serves a sequence of clock readings, holding the last one
// once the script runs out. Set fail to make every fetch error.
type scriptedFetch struct {
	mu      sync.Mutex
	times   []string
	fail    bool
	fetched chan struct{}
}

func newScriptedFetch(times ...string) *scriptedFetch {
	return &scriptedFetch{times: times, fetched: make(chan struct{}, 16)}
}

func (f *scriptedFetch) fetch(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.fetched <- struct{}{} }()
	if f.fail {
		return nil, errors.New("store unreachable")
	}
	m := models.Match{
		ID:     matchID,
		Status: models.MatchLive,
		Period: 1,
		Time:   f.times[0],
		Settings: models.MatchSettings{
			TotalPeriods:          3,
			PeriodDurationMinutes: 20,
			BreakDurationMinutes:  15,
		},
	}
	if len(f.times) > 1 {
		f.times = f.times[1:]
	}
	return &m, nil
}

func (f *scriptedFetch) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *scriptedFetch) waitFetched(t *testing.T) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
	}
}

func recvSnapshot(t *testing.T, ch <-chan models.Match) models.Match {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a snapshot")
		return models.Match{}
	}
}

func assertNoSnapshot(t *testing.T, ch <-chan models.Match) {
	t.Helper()
	select {
	case m := <-ch:
		t.Fatalf("unexpected snapshot: time=%s", m.Time)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerDeliversOnEachInterval(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fetch := newScriptedFetch("04:00", "04:07", "04:12")
	p := NewPoller(fetch.fetch, time.Second, fc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := p.Subscribe(ctx, uuid.New())
	require.NoError(t, err)

	// Subscribe polls once before the first interval elapses.
	assert.Equal(t, "04:00", recvSnapshot(t, ch).Time)

	fc.BlockUntil(1)
	fc.Advance(time.Second)
	assert.Equal(t, "04:07", recvSnapshot(t, ch).Time)

	fc.BlockUntil(1)
	fc.Advance(time.Second)
	assert.Equal(t, "04:12", recvSnapshot(t, ch).Time)
}

func TestPollerKeepsLastSnapshotAcrossFetchFailures(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fetch := newScriptedFetch("04:00", "04:05")
	p := NewPoller(fetch.fetch, time.Second, fc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := p.Subscribe(ctx, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "04:00", recvSnapshot(t, ch).Time)

	fetch.setFail(true)
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	fetch.waitFetched(t)
	assertNoSnapshot(t, ch)

	// The store comes back and the next interval catches up.
	fetch.setFail(false)
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	assert.Equal(t, "04:05", recvSnapshot(t, ch).Time)
}

// A consumer that falls behind only ever sees the freshest snapshot: a new
// poll replaces the undelivered one instead of queueing behind it.
func TestPollerLatestSnapshotWins(t *testing.T) {
	fetch := newScriptedFetch("01:00", "01:05")
	p := NewPoller(fetch.fetch, time.Second, clockwork.NewFakeClock())

	ctx := context.Background()
	ch := make(chan models.Match, 1)

	p.poll(ctx, uuid.New(), ch)
	p.poll(ctx, uuid.New(), ch)

	assert.Equal(t, "01:05", recvSnapshot(t, ch).Time)
	assertNoSnapshot(t, ch)
}

func TestPollerClosesChannelOnCancel(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fetch := newScriptedFetch("04:00")
	p := NewPoller(fetch.fetch, time.Second, fc)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Subscribe(ctx, uuid.New())
	require.NoError(t, err)
	recvSnapshot(t, ch)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

type stubSource struct {
	ch chan models.Match
}

func (s stubSource) Subscribe(ctx context.Context, matchID uuid.UUID) (<-chan models.Match, error) {
	return s.ch, nil
}

type errSource struct{}

func (errSource) Subscribe(ctx context.Context, matchID uuid.UUID) (<-chan models.Match, error) {
	return nil, errors.New("broker unavailable")
}

func TestRunFeedsViewerUntilSourceCloses(t *testing.T) {
	h := newHarness(t)
	src := stubSource{ch: make(chan models.Match, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Run(ctx, src, uuid.New(), h.viewer) }()

	src.ch <- liveMatch(t, models.MatchLive, "02:00")
	assert.Equal(t, "02:00", h.waitUpdate(t).Match.Time)

	// The viewer Run started ticks between snapshots.
	h.fc.Advance(time.Second)
	assert.Equal(t, "02:01", h.waitUpdate(t).Match.Time)

	src.ch <- liveMatch(t, models.MatchPaused, "02:00")
	assert.Equal(t, models.MatchPaused, h.waitUpdate(t).Match.Status)

	close(src.ch)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the source closed")
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	h := newHarness(t)
	src := stubSource{ch: make(chan models.Match)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, src, uuid.New(), h.viewer) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunSurfacesSubscribeError(t *testing.T) {
	h := newHarness(t)
	err := Run(context.Background(), errSource{}, uuid.New(), h.viewer)
	assert.ErrorContains(t, err, "broker unavailable")
}
