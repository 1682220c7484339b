// Package guard decides whether a reported clock or timezone change should
// reach the application. A Tracker holds visibility and screen power, a Gate
// consults it for every time signal, and an Engine wires both to a signal source.
package guard

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"timeguard"
	"timeguard/internal/signals"
)

var ErrEngineClosed = errors.New("guard: engine closed")

// Engine owns one Tracker and one Gate and the subscriptions that feed them.
type Engine struct {
	tracker *Tracker
	gate    *Gate
	source  signals.Source

	mu      sync.Mutex
	subs    []signals.Subscription
	started bool
	closed  bool

	// stopped is read by the subscription handlers so a publish already in
	// flight when Close returns is dropped instead of reaching the gate.
	stopped atomic.Bool
}

func NewEngine(source signals.Source, sink Notifier, opts Options) *Engine {
	tracker := NewTracker()
	return &Engine{
		tracker: tracker,
		gate:    NewGate(tracker, sink, opts),
		source:  source,
	}
}

func (e *Engine) Tracker() *Tracker { return e.tracker }
func (e *Engine) Gate() *Gate       { return e.gate }

// Start subscribes to every stream the engine consumes. Calling it again
// after a successful start is a no-op; after Close it fails.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.started {
		return nil
	}

	handlers := []struct {
		kind signals.Kind
		fn   signals.Handler
	}{
		{signals.KindClock, func(signals.Event) { e.gate.OnTimeSignal(timeguard.ClockChanged) }},
		{signals.KindTimezone, func(signals.Event) { e.gate.OnTimeSignal(timeguard.TimeZoneChanged) }},
		{signals.KindDate, func(signals.Event) { e.gate.OnTimeSignal(timeguard.DateChanged) }},
		{signals.KindVisibility, func(ev signals.Event) { e.tracker.SetVisibility(ev.Visibility) }},
		{signals.KindScreenPower, func(ev signals.Event) { e.tracker.SetScreenPower(ev.ScreenPower) }},
	}

	for _, h := range handlers {
		sub, err := e.source.Subscribe(h.kind, e.guarded(h.fn))
		if err != nil {
			_ = e.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", h.kind, err)
		}
		e.subs = append(e.subs, sub)
	}
	e.started = true
	return nil
}

// Close unsubscribes every outstanding handle. It is irreversible; later
// calls return nil without doing anything.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.stopped.Store(true)
	return e.unsubscribeLocked()
}

func (e *Engine) guarded(fn signals.Handler) signals.Handler {
	return func(ev signals.Event) {
		if e.stopped.Load() {
			return
		}
		fn(ev)
	}
}

func (e *Engine) unsubscribeLocked() error {
	var errs []error
	for _, sub := range e.subs {
		if err := e.source.Unsubscribe(sub); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", sub.Kind(), err))
		}
	}
	e.subs = nil
	return errors.Join(errs...)
}
