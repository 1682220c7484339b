package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"timeguard"
	"timeguard/internal/guard"
	"timeguard/internal/models"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

type syncDecisionRepo struct {
	mu   sync.Mutex
	rows []models.GuardDecision
}

func (r *syncDecisionRepo) Append(_ context.Context, d models.GuardDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, d)
	return nil
}

func (r *syncDecisionRepo) List(context.Context, models.DecisionFilter) ([]models.GuardDecision, error) {
	return nil, nil
}

func (r *syncDecisionRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func TestDecisionRecorder_PersistsDecisions(t *testing.T) {
	repo := &syncDecisionRepo{}
	rec := NewDecisionRecorder(repo, nil, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	rec.Record(guard.Decision{
		Kind:        timeguard.TimeZoneChanged,
		Visibility:  timeguard.Background,
		ScreenPower: timeguard.ScreenOn,
		Outcome:     timeguard.OutcomeNotified,
		At:          at,
	})

	require.Eventually(t, func() bool { return repo.len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	row := repo.rows[0]
	require.Equal(t, "timezone", row.Kind)
	require.Equal(t, "background", row.Visibility)
	require.Equal(t, "on", row.ScreenPower)
	require.Equal(t, "NOTIFIED", row.Decision)
	require.True(t, row.OccurredAt.Equal(at))
}

func TestDecisionRecorder_DropsWhenFull(t *testing.T) {
	reg := metrics.NewRegistry()
	rec := NewDecisionRecorder(&syncDecisionRepo{}, nil, 1, reg)

	rec.Record(guard.Decision{Outcome: timeguard.OutcomeSuppressed})
	rec.Record(guard.Decision{Outcome: timeguard.OutcomeSuppressed})

	require.EqualValues(t, 1, rec.Dropped())
	require.EqualValues(t, 1, metrics.GetOrRegisterCounter(MetricRecorderDropped, reg).Count())
}

func TestDecisionRecorder_DrainsOnCancel(t *testing.T) {
	repo := &syncDecisionRepo{}
	rec := NewDecisionRecorder(repo, nil, 4, nil)
	for i := 0; i < 3; i++ {
		rec.Record(guard.Decision{Outcome: timeguard.OutcomeSuppressed})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	require.Equal(t, 3, repo.len())
}

func TestStatsRecorder(t *testing.T) {
	reg := metrics.NewRegistry()
	r := NewStatsRecorder(reg)
	r.Record(guard.Decision{Outcome: timeguard.OutcomeNotified})
	r.Record(guard.Decision{Outcome: timeguard.OutcomeSuppressed})
	r.Record(guard.Decision{Outcome: timeguard.OutcomeSuppressed})

	require.EqualValues(t, 3, metrics.GetOrRegisterCounter(MetricReceived, reg).Count())
	require.EqualValues(t, 1, metrics.GetOrRegisterCounter(MetricNotified, reg).Count())
	require.EqualValues(t, 2, metrics.GetOrRegisterCounter(MetricSuppressed, reg).Count())
}
