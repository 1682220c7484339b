// Package signals carries OS-level events (clock, timezone, visibility, screen
// power) from producers to subscribers. Producers publish; the guard engine
// subscribes and keeps the returned handles so it can unsubscribe on teardown.
package signals

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"timeguard"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Kind identifies an event stream.
type Kind string

const (
	KindClock       Kind = "clock"
	KindTimezone    Kind = "timezone"
	KindDate        Kind = "date"
	KindVisibility  Kind = "visibility"
	KindScreenPower Kind = "screen_power"
)

// Event is a single delivery. Visibility and ScreenPower are only meaningful
// for the matching state kinds.
type Event struct {
	Kind        Kind
	At          time.Time
	Visibility  timeguard.VisibilityState
	ScreenPower timeguard.ScreenPowerState
	Source      string // producer name, for diagnostics
}

// Handler runs on the publisher's goroutine.
type Handler func(Event)

// Subscription is an opaque handle returned by Subscribe.
type Subscription struct {
	id   string
	kind Kind
}

func (s Subscription) ID() string { return s.id }
func (s Subscription) Kind() Kind { return s.kind }

// Source is the subscribe side of a signal bus.
type Source interface {
	Subscribe(kind Kind, h Handler) (Subscription, error)
	Unsubscribe(sub Subscription) error
}

// Publisher is the producer side of a signal bus.
type Publisher interface {
	Publish(ev Event)
}

var (
	ErrUnknownSubscription = errors.New("signals: unknown subscription")
	ErrNilHandler          = errors.New("signals: nil handler")
	ErrBusClosed           = errors.New("signals: bus closed")
)

type entry struct {
	kind    Kind
	handler Handler
	seq     uint64
}

// Bus is an in-process Source and Publisher.
type Bus struct {
	subs   cmap.ConcurrentMap[string, entry]
	seq    atomic.Uint64
	closed atomic.Bool
	now    func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subs: cmap.New[entry](),
		now:  time.Now,
	}
}

var (
	_ Source    = (*Bus)(nil)
	_ Publisher = (*Bus)(nil)
)

// Subscribe registers h for events of the given kind.
func (b *Bus) Subscribe(kind Kind, h Handler) (Subscription, error) {
	if h == nil {
		return Subscription{}, ErrNilHandler
	}
	if b.closed.Load() {
		return Subscription{}, ErrBusClosed
	}
	sub := Subscription{id: uuid.NewString(), kind: kind}
	b.subs.Set(sub.id, entry{kind: kind, handler: h, seq: b.seq.Add(1)})
	return sub, nil
}

// Unsubscribe removes the handle. Removing a handle twice returns ErrUnknownSubscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if _, ok := b.subs.Pop(sub.id); !ok {
		return ErrUnknownSubscription
	}
	return nil
}

// Publish delivers ev to every handler subscribed to ev.Kind, in subscription
// order. Handlers are called outside the registry locks so they may
// subscribe or unsubscribe.
func (b *Bus) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	var matched []entry
	b.subs.IterCb(func(_ string, e entry) {
		if e.kind == ev.Kind {
			matched = append(matched, e)
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	for _, e := range matched {
		e.handler(ev)
	}
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	return b.subs.Count()
}

// Close drops every subscription and rejects new ones.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.subs.Clear()
}
