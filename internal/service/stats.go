package service

import (
	"timeguard"
	"timeguard/internal/guard"

	"github.com/rcrowley/go-metrics"
)

// Gate counters.
const (
	MetricReceived   = "gate.received"
	MetricNotified   = "gate.notified"
	MetricSuppressed = "gate.suppressed"
)

// StatsRecorder counts gate decisions. It satisfies guard.Recorder.
type StatsRecorder struct {
	received   metrics.Counter
	notified   metrics.Counter
	suppressed metrics.Counter
}

func NewStatsRecorder(reg metrics.Registry) *StatsRecorder {
	return &StatsRecorder{
		received:   metrics.GetOrRegisterCounter(MetricReceived, reg),
		notified:   metrics.GetOrRegisterCounter(MetricNotified, reg),
		suppressed: metrics.GetOrRegisterCounter(MetricSuppressed, reg),
	}
}

func (r *StatsRecorder) Record(d guard.Decision) {
	r.received.Inc(1)
	if d.Outcome == timeguard.OutcomeNotified {
		r.notified.Inc(1)
		return
	}
	r.suppressed.Inc(1)
}
