//go:build linux

package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"timeguard/internal/logger"
	"timeguard/internal/signals"

	"golang.org/x/sys/unix"
)

// armHorizon is how far ahead the timer is armed. It only needs to outlive
// any realistic uptime between re-arms.
const armHorizon = 10 * 365 * 24 * time.Hour

// TimerFDWatcher asks the kernel to cancel a CLOCK_REALTIME timer whenever
// the realtime clock is set, which catches every discontinuous change
// regardless of its size.
type TimerFDWatcher struct {
	pub signals.Publisher
	log *logger.Logger
}

func NewTimerFDWatcher(pub signals.Publisher, log *logger.Logger) *TimerFDWatcher {
	return &TimerFDWatcher{pub: pub, log: nopIfNil(log).Named("timerfd")}
}

func (w *TimerFDWatcher) Run(ctx context.Context) error {
	fd, err := unix.TimerfdCreate(unix.CLOCK_REALTIME, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return fmt.Errorf("timerfd_create: %w", err)
	}
	// The runtime poller owns the non-blocking descriptor, so Close unblocks Read.
	f := os.NewFile(uintptr(fd), "timerfd")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = f.Close()
	}()

	buf := make([]byte, 8)
	for {
		if err := armCancelOnSet(fd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("timerfd_settime: %w", err)
		}

		_, err := f.Read(buf)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, unix.ECANCELED):
			w.log.Infow("realtime clock was set")
			w.pub.Publish(signals.Event{Kind: signals.KindClock, Source: "timerfd"})
		case err != nil:
			return fmt.Errorf("read timerfd: %w", err)
		}
	}
}

func armCancelOnSet(fd int) error {
	deadline := time.Now().Add(armHorizon)
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(deadline.UnixNano())}
	return unix.TimerfdSettime(fd, unix.TFD_TIMER_ABSTIME|unix.TFD_TIMER_CANCEL_ON_SET, &spec, nil)
}

// NewClockWatcher returns the best clock change producer for this platform:
// a timerfd watcher for clock sets plus a polling watcher for date rollovers.
func NewClockWatcher(pub signals.Publisher, log *logger.Logger, opts ClockJumpOptions) Runner {
	opts.DateOnly = true
	return Group{
		NewTimerFDWatcher(pub, log),
		NewClockJumpWatcher(pub, log, opts),
	}
}
