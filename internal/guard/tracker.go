package guard

import (
	"sync/atomic"

	"timeguard"
)

// Tracker holds the application visibility and the screen power state.
// Both fields are last-write-wins and safe for concurrent use; a new Tracker
// starts in (Foreground, On).
type Tracker struct {
	visibility  atomic.Int32
	screenPower atomic.Int32
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) SetVisibility(v timeguard.VisibilityState) {
	t.visibility.Store(int32(v))
}

func (t *Tracker) SetScreenPower(s timeguard.ScreenPowerState) {
	t.screenPower.Store(int32(s))
}

func (t *Tracker) Visibility() timeguard.VisibilityState {
	return timeguard.VisibilityState(t.visibility.Load())
}

func (t *Tracker) ScreenPower() timeguard.ScreenPowerState {
	return timeguard.ScreenPowerState(t.screenPower.Load())
}

// IsEligibleForNotification reports whether a time change should reach the
// application: only while it is in the background and the screen is on.
func (t *Tracker) IsEligibleForNotification() bool {
	return t.Snapshot().Eligible
}

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	Visibility  timeguard.VisibilityState  `json:"visibility"`
	ScreenPower timeguard.ScreenPowerState `json:"screen_power"`
	Eligible    bool                       `json:"eligible"`
}

func (t *Tracker) Snapshot() Snapshot {
	v := t.Visibility()
	s := t.ScreenPower()
	return Snapshot{
		Visibility:  v,
		ScreenPower: s,
		Eligible:    eligible(v, s),
	}
}

func eligible(v timeguard.VisibilityState, s timeguard.ScreenPowerState) bool {
	return v == timeguard.Background && s == timeguard.ScreenOn
}
