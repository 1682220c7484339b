package guard

import (
	"fmt"
	"sync/atomic"
	"time"

	"timeguard"
)

// Notifier is the consumer of "time changed" notifications.
// Notify is fire-and-forget; implementations must not block.
type Notifier interface {
	Notify()
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func()

func (f NotifierFunc) Notify() { f() }

// Trace event names.
const (
	TraceTimeSignal = "time_signal"
	TraceReset      = "reset"
	TraceSinkPanic  = "sink_panic"
)

// TraceRecord is one diagnostic entry emitted while logging is enabled.
type TraceRecord struct {
	Event       string
	Kind        timeguard.TimeSignalKind
	Visibility  timeguard.VisibilityState
	ScreenPower timeguard.ScreenPowerState
	Outcome     timeguard.Outcome
	At          time.Time
	Detail      string
}

// Tracer receives diagnostic records. It is only consulted when logging is enabled.
type Tracer interface {
	Trace(TraceRecord)
}

// Decision is the gate's verdict for one time signal.
type Decision struct {
	Kind        timeguard.TimeSignalKind
	Visibility  timeguard.VisibilityState
	ScreenPower timeguard.ScreenPowerState
	Outcome     timeguard.Outcome
	At          time.Time
}

// Recorder observes every decision regardless of the logging flag.
// Record is called on the signal goroutine and must not block.
type Recorder interface {
	Record(Decision)
}

// Options configures a Gate.
type Options struct {
	Tracer         Tracer
	LoggingEnabled bool
	Recorders      []Recorder
	Now            func() time.Time
}

// Gate forwards time signals to the sink only when the tracker says so.
type Gate struct {
	tracker   *Tracker
	sink      Notifier
	tracer    Tracer
	recorders []Recorder
	now       func() time.Time
	logging   atomic.Bool
}

func NewGate(tracker *Tracker, sink Notifier, opts Options) *Gate {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	g := &Gate{
		tracker:   tracker,
		sink:      sink,
		tracer:    opts.Tracer,
		recorders: opts.Recorders,
		now:       now,
	}
	g.logging.Store(opts.LoggingEnabled)
	return g
}

// OnTimeSignal notifies the sink at most once for this call. It never blocks
// on its own and never surfaces sink failures.
func (g *Gate) OnTimeSignal(kind timeguard.TimeSignalKind) {
	snap := g.tracker.Snapshot()
	d := Decision{
		Kind:        kind,
		Visibility:  snap.Visibility,
		ScreenPower: snap.ScreenPower,
		Outcome:     timeguard.OutcomeSuppressed,
		At:          g.now(),
	}
	if snap.Eligible {
		d.Outcome = timeguard.OutcomeNotified
		g.notify(d)
	}

	g.trace(TraceRecord{
		Event:       TraceTimeSignal,
		Kind:        d.Kind,
		Visibility:  d.Visibility,
		ScreenPower: d.ScreenPower,
		Outcome:     d.Outcome,
		At:          d.At,
	})
	for _, r := range g.recorders {
		r.Record(d)
	}
}

func (g *Gate) notify(d Decision) {
	if g.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.trace(TraceRecord{
				Event:       TraceSinkPanic,
				Kind:        d.Kind,
				Visibility:  d.Visibility,
				ScreenPower: d.ScreenPower,
				Outcome:     d.Outcome,
				At:          d.At,
				Detail:      fmt.Sprint(r),
			})
		}
	}()
	g.sink.Notify()
}

// Reset acknowledges an administrative reset. There is no bookkeeping beyond
// the tracker fields, which Reset leaves alone.
func (g *Gate) Reset() error {
	snap := g.tracker.Snapshot()
	g.trace(TraceRecord{
		Event:       TraceReset,
		Visibility:  snap.Visibility,
		ScreenPower: snap.ScreenPower,
		At:          g.now(),
	})
	return nil
}

func (g *Gate) SetLoggingEnabled(enabled bool) {
	g.logging.Store(enabled)
}

func (g *Gate) LoggingEnabled() bool {
	return g.logging.Load()
}

func (g *Gate) trace(rec TraceRecord) {
	if g.tracer == nil || !g.logging.Load() {
		return
	}
	g.tracer.Trace(rec)
}
