package service

import (
	"context"

	"timeguard"
	"timeguard/internal/guard"
	"timeguard/internal/models"
	"timeguard/internal/notify"
	"timeguard/internal/signals"

	"github.com/rcrowley/go-metrics"
)

const apiSource = "api"

// GuardService reads the engine state and publishes API-reported signals onto
// the same bus the host watchers use, so both paths are gated identically.
type GuardService struct {
	engine  *guard.Engine
	pub     signals.Publisher
	reg     metrics.Registry
	clients ClientCounter
}

func NewGuardService(engine *guard.Engine, pub signals.Publisher, reg metrics.Registry, clients ClientCounter) *GuardService {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &GuardService{engine: engine, pub: pub, reg: reg, clients: clients}
}

func (s *GuardService) State(_ context.Context) models.GuardState {
	snap := s.engine.Tracker().Snapshot()
	return models.GuardState{
		Visibility:     snap.Visibility.String(),
		ScreenPower:    snap.ScreenPower.String(),
		Eligible:       snap.Eligible,
		LoggingEnabled: s.engine.Gate().LoggingEnabled(),
	}
}

func (s *GuardService) SetVisibility(_ context.Context, v timeguard.VisibilityState) {
	s.pub.Publish(signals.Event{Kind: signals.KindVisibility, Visibility: v, Source: apiSource})
}

func (s *GuardService) SetScreenPower(_ context.Context, sp timeguard.ScreenPowerState) {
	s.pub.Publish(signals.Event{Kind: signals.KindScreenPower, ScreenPower: sp, Source: apiSource})
}

func (s *GuardService) InjectSignal(_ context.Context, kind timeguard.TimeSignalKind) {
	s.pub.Publish(signals.Event{Kind: signalKind(kind), Source: apiSource})
}

func (s *GuardService) Stats(_ context.Context) models.GuardStats {
	st := models.GuardStats{
		Received:   counter(s.reg, MetricReceived),
		Notified:   counter(s.reg, MetricNotified),
		Suppressed: counter(s.reg, MetricSuppressed),
		Enqueued:   counter(s.reg, notify.MetricEnqueued),
		Dropped:    counter(s.reg, notify.MetricDropped),
		Delivered:  counter(s.reg, notify.MetricDelivered),
		Failed:     counter(s.reg, notify.MetricFailed),
	}
	if s.clients != nil {
		st.Clients = s.clients.Len()
	}
	return st
}

func signalKind(k timeguard.TimeSignalKind) signals.Kind {
	switch k {
	case timeguard.TimeZoneChanged:
		return signals.KindTimezone
	case timeguard.DateChanged:
		return signals.KindDate
	default:
		return signals.KindClock
	}
}

func counter(reg metrics.Registry, name string) int64 {
	return metrics.GetOrRegisterCounter(name, reg).Count()
}
