//go:build !linux

package watch

import (
	"timeguard/internal/logger"
	"timeguard/internal/signals"
)

// NewClockWatcher returns the polling watcher, which covers both clock jumps
// and date rollovers where timerfd is unavailable.
func NewClockWatcher(pub signals.Publisher, log *logger.Logger, opts ClockJumpOptions) Runner {
	return NewClockJumpWatcher(pub, log, opts)
}
