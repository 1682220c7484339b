package service

import (
	"context"
	"time"

	"timeguard/internal/guard"
	"timeguard/internal/logger"
	"timeguard/internal/models"
	"timeguard/internal/repository"

	"github.com/rcrowley/go-metrics"
)

const MetricRecorderDropped = "recorder.dropped"

// drainTimeout bounds how long Run keeps writing queued decisions after cancel.
const drainTimeout = 2 * time.Second

// DecisionRecorder persists gate decisions on its own goroutine. Record never
// blocks: when the queue is full the decision is dropped and counted.
type DecisionRecorder struct {
	repo    repository.DecisionRepo
	log     *logger.Logger
	queue   chan models.GuardDecision
	dropped metrics.Counter
}

func NewDecisionRecorder(repo repository.DecisionRepo, log *logger.Logger, size int, reg metrics.Registry) *DecisionRecorder {
	if size <= 0 {
		size = 256
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DecisionRecorder{
		repo:    repo,
		log:     log.Named("recorder"),
		queue:   make(chan models.GuardDecision, size),
		dropped: metrics.GetOrRegisterCounter(MetricRecorderDropped, reg),
	}
}

func (r *DecisionRecorder) Record(d guard.Decision) {
	row := models.GuardDecision{
		OccurredAt:  d.At,
		Kind:        d.Kind.String(),
		Visibility:  d.Visibility.String(),
		ScreenPower: d.ScreenPower.String(),
		Decision:    string(d.Outcome),
	}
	select {
	case r.queue <- row:
	default:
		r.dropped.Inc(1)
	}
}

// Run writes queued decisions until ctx is canceled, then drains what is left.
func (r *DecisionRecorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case row := <-r.queue:
			r.write(ctx, row)
		}
	}
}

func (r *DecisionRecorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case row := <-r.queue:
			r.write(ctx, row)
		default:
			return
		}
	}
}

func (r *DecisionRecorder) write(ctx context.Context, row models.GuardDecision) {
	if err := r.repo.Append(ctx, row); err != nil {
		r.log.Errorw("persist_decision_failed", "kind", row.Kind, "decision", row.Decision, "err", err)
	}
}

func (r *DecisionRecorder) Dropped() int64 {
	return r.dropped.Count()
}
