// Package notify delivers "time changed" notifications from the gate to the
// connected application clients without ever blocking the gate.
package notify

import (
	"context"
	"sync"
	"time"

	"timeguard"
	"timeguard/internal/logger"

	"github.com/google/uuid"
	"github.com/rcrowley/go-metrics"
)

const DefaultQueueSize = 64

// Metric names registered by the dispatcher.
const (
	MetricEnqueued  = "notify.enqueued"
	MetricDropped   = "notify.dropped"
	MetricDelivered = "notify.delivered"
	MetricFailed    = "notify.failed"
)

// Notification is one onTimeChanged push.
type Notification struct {
	ID     string    `json:"id"`
	Method string    `json:"method"`
	At     time.Time `json:"at"`
}

// Subscriber receives every dispatched notification.
type Subscriber interface {
	Deliver(n Notification) error
}

// Dispatcher queues notifications and fans them out on its own goroutine.
type Dispatcher struct {
	log   *logger.Logger
	queue chan Notification
	now   func() time.Time

	mu   sync.RWMutex
	subs []Subscriber

	enqueued  metrics.Counter
	dropped   metrics.Counter
	delivered metrics.Counter
	failed    metrics.Counter
}

// NewDispatcher builds a dispatcher with a bounded queue. Counters are
// registered in reg; a nil reg uses a private registry.
func NewDispatcher(log *logger.Logger, size int, reg metrics.Registry) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		log:       log.Named("dispatcher"),
		queue:     make(chan Notification, size),
		now:       time.Now,
		enqueued:  metrics.GetOrRegisterCounter(MetricEnqueued, reg),
		dropped:   metrics.GetOrRegisterCounter(MetricDropped, reg),
		delivered: metrics.GetOrRegisterCounter(MetricDelivered, reg),
		failed:    metrics.GetOrRegisterCounter(MetricFailed, reg),
	}
}

func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

// Notify enqueues a notification. When the queue is full the notification
// is dropped and counted.
func (d *Dispatcher) Notify() {
	n := Notification{
		ID:     uuid.NewString(),
		Method: timeguard.MethodTimeChanged,
		At:     d.now(),
	}
	select {
	case d.queue <- n:
		d.enqueued.Inc(1)
	default:
		d.dropped.Inc(1)
		d.log.Warnw("notification queue full, dropping", "id", n.ID)
	}
}

// Run delivers queued notifications until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(n)
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	d.mu.RLock()
	subs := append([]Subscriber(nil), d.subs...)
	d.mu.RUnlock()

	for _, s := range subs {
		if err := s.Deliver(n); err != nil {
			d.failed.Inc(1)
			d.log.Warnw("deliver notification", "id", n.ID, "err", err)
		}
	}
	d.delivered.Inc(1)
}

func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Count()
}
