package watch

import (
	"context"
	"time"

	"timeguard/internal/logger"
	"timeguard/internal/signals"

	"github.com/jonboulle/clockwork"
)

const (
	defaultJumpInterval  = 5 * time.Second
	defaultJumpTolerance = 2 * time.Second
)

// ClockJumpOptions configures a ClockJumpWatcher. Zero values pick defaults.
type ClockJumpOptions struct {
	Interval  time.Duration
	Tolerance time.Duration
	// DateOnly disables jump detection and keeps only the date rollover check.
	DateOnly bool
	Clock    clockwork.Clock
	// Elapsed reports monotonic time since an arbitrary origin.
	Elapsed  func() time.Duration
	Location *time.Location
}

// ClockJumpWatcher detects wall clock steps by comparing how far the wall
// clock moved between ticks with how far the monotonic clock moved. It also
// reports local calendar date rollovers.
type ClockJumpWatcher struct {
	pub       signals.Publisher
	log       *logger.Logger
	clock     clockwork.Clock
	elapsed   func() time.Duration
	interval  time.Duration
	tolerance time.Duration
	dateOnly  bool
	loc       *time.Location
}

func NewClockJumpWatcher(pub signals.Publisher, log *logger.Logger, opts ClockJumpOptions) *ClockJumpWatcher {
	w := &ClockJumpWatcher{
		pub:       pub,
		log:       nopIfNil(log).Named("clock_jump"),
		clock:     opts.Clock,
		elapsed:   opts.Elapsed,
		interval:  opts.Interval,
		tolerance: opts.Tolerance,
		dateOnly:  opts.DateOnly,
		loc:       opts.Location,
	}
	if w.clock == nil {
		w.clock = clockwork.NewRealClock()
	}
	if w.elapsed == nil {
		origin := time.Now()
		w.elapsed = func() time.Duration { return time.Since(origin) }
	}
	if w.interval <= 0 {
		w.interval = defaultJumpInterval
	}
	if w.tolerance <= 0 {
		w.tolerance = defaultJumpTolerance
	}
	if w.loc == nil {
		w.loc = time.Local
	}
	return w
}

func (w *ClockJumpWatcher) Run(ctx context.Context) error {
	// Round(0) drops the monotonic reading so Sub compares wall time.
	prevWall := w.clock.Now().Round(0)
	prevMono := w.elapsed()

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Debugw("clock jump watcher started", "interval", w.interval, "tolerance", w.tolerance, "date_only", w.dateOnly)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			wall := w.clock.Now().Round(0)
			mono := w.elapsed()

			drift := wall.Sub(prevWall) - (mono - prevMono)
			switch {
			case !w.dateOnly && absDuration(drift) > w.tolerance:
				w.log.Infow("wall clock jumped", "drift", drift)
				w.pub.Publish(signals.Event{Kind: signals.KindClock, Source: "clock_jump"})
			case !sameDay(prevWall.In(w.loc), wall.In(w.loc)):
				w.log.Infow("date changed", "date", wall.In(w.loc).Format(time.DateOnly))
				w.pub.Publish(signals.Event{Kind: signals.KindDate, Source: "clock_jump"})
			}
			prevWall, prevMono = wall, mono
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
