package watch

import (
	"testing"
	"time"

	"timeguard/internal/signals"
)

// chanPublisher forwards published events to a channel the test reads from.
type chanPublisher struct {
	ch chan signals.Event
}

func newChanPublisher() *chanPublisher {
	return &chanPublisher{ch: make(chan signals.Event, 16)}
}

func (p *chanPublisher) Publish(ev signals.Event) {
	p.ch <- ev
}

func (p *chanPublisher) next(t *testing.T) signals.Event {
	t.Helper()
	select {
	case ev := <-p.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return signals.Event{}
	}
}

func (p *chanPublisher) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-p.ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(wait):
	}
}
