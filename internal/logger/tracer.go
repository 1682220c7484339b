package logger

import (
	"timeguard/internal/guard"
)

// Tracer writes gate diagnostics through zap. It satisfies guard.Tracer.
type Tracer struct {
	log *Logger
}

func NewTracer(log *Logger) *Tracer {
	return &Tracer{log: log.Named("gate")}
}

func (t *Tracer) Trace(rec guard.TraceRecord) {
	switch rec.Event {
	case guard.TraceSinkPanic:
		t.log.Warnw("notification sink panicked",
			"kind", rec.Kind,
			"visibility", rec.Visibility,
			"screen_power", rec.ScreenPower,
			"panic", rec.Detail,
		)
	case guard.TraceReset:
		t.log.Infow("reset requested",
			"visibility", rec.Visibility,
			"screen_power", rec.ScreenPower,
		)
	default:
		t.log.Infow("time signal",
			"kind", rec.Kind,
			"visibility", rec.Visibility,
			"screen_power", rec.ScreenPower,
			"decision", string(rec.Outcome),
			"at", rec.At,
		)
	}
}
