package watch

import (
	"context"
	"errors"
	"time"

	"timeguard"
	"timeguard/internal/logger"
	"timeguard/internal/signals"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
)

const defaultDisplayInterval = time.Second

// ErrNoDisplay is returned by a DisplayConnector when there is nothing to connect to.
var ErrNoDisplay = errors.New("watch: no display configured")

// DisplayConn reads the current screen and focus state from a display server.
type DisplayConn interface {
	ScreenPower() (timeguard.ScreenPowerState, error)
	Visibility() (timeguard.VisibilityState, error)
	Close() error
}

// DisplayConnector opens a new display connection. It is called again after the connection fails.
type DisplayConnector func() (DisplayConn, error)

type DisplayOptions struct {
	Interval time.Duration
	// TrackVisibility enables focus tracking; without it only screen power is published.
	TrackVisibility bool
	Clock           clockwork.Clock
	// NewBackOff builds the reconnect policy. Defaults to exponential backoff capped at 30s.
	NewBackOff func() backoff.BackOff
}

// DisplayWatcher polls a display connection and publishes screen power and
// visibility transitions.
type DisplayWatcher struct {
	pub        signals.Publisher
	log        *logger.Logger
	connect    DisplayConnector
	interval   time.Duration
	trackVis   bool
	clock      clockwork.Clock
	newBackOff func() backoff.BackOff

	screen     timeguard.ScreenPowerState
	visibility timeguard.VisibilityState
}

func NewDisplayWatcher(pub signals.Publisher, log *logger.Logger, connect DisplayConnector, opts DisplayOptions) *DisplayWatcher {
	w := &DisplayWatcher{
		pub:        pub,
		log:        nopIfNil(log).Named("display"),
		connect:    connect,
		interval:   opts.Interval,
		trackVis:   opts.TrackVisibility,
		clock:      opts.Clock,
		newBackOff: opts.NewBackOff,
		screen:     timeguard.ScreenOn,
		visibility: timeguard.Foreground,
	}
	if w.interval <= 0 {
		w.interval = defaultDisplayInterval
	}
	if w.clock == nil {
		w.clock = clockwork.NewRealClock()
	}
	if w.newBackOff == nil {
		w.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		}
	}
	return w
}

// Run connects, polls until the connection fails, and reconnects. A connector
// returning ErrNoDisplay disables the watcher without failing the daemon.
func (w *DisplayWatcher) Run(ctx context.Context) error {
	for {
		disp, err := w.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrNoDisplay) {
				w.log.Infow("display watcher disabled", "reason", err)
				return nil
			}
			return err
		}

		err = w.poll(ctx, disp)
		if cerr := disp.Close(); cerr != nil {
			w.log.Debugw("close display connection", "err", cerr)
		}
		if ctx.Err() != nil {
			return nil
		}
		w.log.Warnw("display connection failed, reconnecting", "err", err)
	}
}

func (w *DisplayWatcher) dial(ctx context.Context) (DisplayConn, error) {
	var disp DisplayConn
	operation := func() error {
		p, err := w.connect()
		if err != nil {
			if errors.Is(err, ErrNoDisplay) {
				return backoff.Permanent(err)
			}
			w.log.Debugw("display connect failed", "err", err)
			return err
		}
		disp = p
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(w.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return disp, nil
}

func (w *DisplayWatcher) poll(ctx context.Context, disp DisplayConn) error {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := w.sample(disp); err != nil {
				return err
			}
		}
	}
}

func (w *DisplayWatcher) sample(disp DisplayConn) error {
	screen, err := disp.ScreenPower()
	if err != nil {
		return err
	}
	if screen != w.screen {
		w.screen = screen
		w.log.Infow("screen power changed", "screen_power", screen)
		w.pub.Publish(signals.Event{Kind: signals.KindScreenPower, ScreenPower: screen, Source: "display"})
	}

	if !w.trackVis {
		return nil
	}
	vis, err := disp.Visibility()
	if err != nil {
		return err
	}
	if vis != w.visibility {
		w.visibility = vis
		w.log.Infow("visibility changed", "visibility", vis)
		w.pub.Publish(signals.Event{Kind: signals.KindVisibility, Visibility: vis, Source: "display"})
	}
	return nil
}
