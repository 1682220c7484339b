// Package watch contains the producers that turn host events (clock steps,
// timezone edits, display and focus changes) into signals on the bus.
package watch

import (
	"context"
	"errors"
	"sync"

	"timeguard/internal/logger"
)

// Runner is a long-lived producer. Run blocks until ctx is canceled or the
// producer fails for good.
type Runner interface {
	Run(ctx context.Context) error
}

// Group runs several producers side by side.
type Group []Runner

// Run starts every member and waits for all of them to return.
func (g Group) Run(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, r := range g {
		wg.Add(1)
		go func(r Runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(r)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func nopIfNil(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}
