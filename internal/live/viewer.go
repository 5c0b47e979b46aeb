// Package live derives a smoothly ticking view of a match from whatever
// authoritative snapshot a viewer currently holds. Two inputs feed each
// viewer: authoritative pushes (always win) and a local one-second ticker
// (advances the clock by at most the single in-flight second). The hazard
// this package exists to contain is duplicate tickers fighting each other
// across re-syncs and remounts.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/engine"
	"github.com/jlindmark/floorlive/internal/gameclock"
	"github.com/jlindmark/floorlive/internal/models"
)

// View is what a viewer renders: the locally ticked match plus the
// wall-clock break countdown, which runs on a separate mechanism from the
// period clock.
type View struct {
	Match          models.Match
	BreakRemaining string
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithClock substitutes the time source. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(v *Viewer) { v.clock = c }
}

// WithOnUpdate registers a callback invoked after every change to the view,
// whether from a sync or a tick. The callback runs on the viewer's
// goroutine and must not block.
func WithOnUpdate(fn func(View)) Option {
	return func(v *Viewer) { v.onUpdate = fn }
}

// Viewer holds one viewer's local live state. Apply is the sync effect;
// the internal ticker is the tick effect. At any moment at most one ticker
// is armed, no matter how many times the viewer is re-synced or restarted.
type Viewer struct {
	clock    clockwork.Clock
	onUpdate func(View)

	mu             sync.Mutex
	local          *models.Match
	breakRemaining string
	ticker         clockwork.Ticker
	cancel         context.CancelFunc
}

// NewViewer creates a viewer with no snapshot yet.
func NewViewer(opts ...Option) *Viewer {
	v := &Viewer{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Start arms the one-second ticker. Calling Start again tears down the
// previous ticker first, so a remount can never accumulate intervals.
func (v *Viewer) Start(ctx context.Context) {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	if v.ticker != nil {
		v.ticker.Stop()
	}
	runCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.ticker = v.clock.NewTicker(time.Second)
	ticker := v.ticker
	v.mu.Unlock()

	go v.run(runCtx, ticker)
}

// Stop tears down the ticker. Safe to call more than once.
func (v *Viewer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.ticker != nil {
		v.ticker.Stop()
		v.ticker = nil
	}
}

func (v *Viewer) run(ctx context.Context, ticker clockwork.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				// A tick already queued when this viewer was torn down must
				// not land on top of the replacement's ticks.
				return
			}
			if view, changed := v.tick(); changed && v.onUpdate != nil {
				v.onUpdate(view)
			}
		}
	}
}

// Apply is the sync effect: a fresh authoritative snapshot overwrites the
// whole local state and re-arms the ticker, so an authoritative correction
// is picked up within one tick cycle instead of racing a stale interval.
func (v *Viewer) Apply(m models.Match) {
	v.mu.Lock()
	v.local = m.Clone()
	v.recomputeBreakLocked()
	if v.ticker != nil {
		v.ticker.Reset(time.Second)
	}
	view := v.viewLocked()
	v.mu.Unlock()

	if v.onUpdate != nil {
		v.onUpdate(view)
	}
}

// Snapshot returns the current view. The second return is false until the
// first authoritative snapshot has arrived.
func (v *Viewer) Snapshot() (View, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.local == nil {
		return View{}, false
	}
	return v.viewLocked(), true
}

// tick advances the local clock by one second. Only the time and the local
// advisory penalty status move here; everything else waits for the next
// authoritative sync.
func (v *Viewer) tick() (View, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.local == nil {
		return View{}, false
	}

	switch v.local.Status {
	case models.MatchLive:
		ps := v.local.Settings.PeriodSeconds()
		cur := gameclock.Parse(v.local.Time)
		if cur >= ps {
			// Freeze at the boundary. Moving past the period end is an
			// admin action that arrives via the next sync.
			return View{}, false
		}
		v.local.Time = gameclock.Format(cur + 1)
		if engine.ExpireDuePenalties(v.local) {
			log.Debug().Str("match_id", v.local.ID.String()).Msg("penalty expired locally, awaiting authoritative confirmation")
		}
		return v.viewLocked(), true
	case models.MatchBreak:
		return v.viewLocked(), v.recomputeBreakLocked()
	default:
		return View{}, false
	}
}

// recomputeBreakLocked refreshes the break countdown from the wall-clock
// deadline. Anchored to BreakEndTime, not to tick counting, and floored at
// zero.
func (v *Viewer) recomputeBreakLocked() bool {
	remaining := 0
	if v.local != nil && v.local.Status == models.MatchBreak && v.local.BreakEndTime != nil {
		remaining = int(v.local.BreakEndTime.Sub(v.clock.Now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
	}
	s := gameclock.Format(remaining)
	changed := s != v.breakRemaining
	v.breakRemaining = s
	return changed
}

func (v *Viewer) viewLocked() View {
	return View{Match: *v.local.Clone(), BreakRemaining: v.breakRemaining}
}
