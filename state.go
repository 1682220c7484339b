// Package timeguard holds the domain vocabulary shared by the guard engine,
// the signal bus and the API layer.
package timeguard

import (
	"fmt"
	"strings"
)

// VisibilityState reports whether the watched application is in front of the user.
// The zero value is Foreground.
type VisibilityState int32

const (
	Foreground VisibilityState = iota
	Background
)

func (v VisibilityState) String() string {
	switch v {
	case Foreground:
		return "foreground"
	case Background:
		return "background"
	default:
		return fmt.Sprintf("visibility(%d)", int32(v))
	}
}

// MarshalText lets the state travel as "foreground" / "background" in JSON.
func (v VisibilityState) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *VisibilityState) UnmarshalText(b []byte) error {
	parsed, err := ParseVisibility(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVisibility accepts "foreground"/"background" (case-insensitive) and the
// lifecycle aliases "resumed"/"paused".
func ParseVisibility(s string) (VisibilityState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foreground", "resumed", "active":
		return Foreground, nil
	case "background", "paused", "inactive":
		return Background, nil
	default:
		return Foreground, fmt.Errorf("unknown visibility state %q", s)
	}
}

// ScreenPowerState reports whether the display is powered. The zero value is ScreenOn.
type ScreenPowerState int32

const (
	ScreenOn ScreenPowerState = iota
	ScreenOff
)

func (s ScreenPowerState) String() string {
	switch s {
	case ScreenOn:
		return "on"
	case ScreenOff:
		return "off"
	default:
		return fmt.Sprintf("screen(%d)", int32(s))
	}
}

func (s ScreenPowerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ScreenPowerState) UnmarshalText(b []byte) error {
	parsed, err := ParseScreenPower(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScreenPower accepts "on"/"off" and the lock aliases "unlocked"/"locked".
func ParseScreenPower(s string) (ScreenPowerState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "unlocked":
		return ScreenOn, nil
	case "off", "locked":
		return ScreenOff, nil
	default:
		return ScreenOn, fmt.Errorf("unknown screen power state %q", s)
	}
}

// TimeSignalKind names the OS event that reported a time change.
type TimeSignalKind int

const (
	ClockChanged TimeSignalKind = iota
	TimeZoneChanged
	DateChanged
)

func (k TimeSignalKind) String() string {
	switch k {
	case ClockChanged:
		return "clock"
	case TimeZoneChanged:
		return "timezone"
	case DateChanged:
		return "date"
	default:
		return fmt.Sprintf("signal(%d)", int(k))
	}
}

func (k TimeSignalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TimeSignalKind) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeSignalKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseTimeSignalKind(s string) (TimeSignalKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clock", "time":
		return ClockChanged, nil
	case "timezone", "tz":
		return TimeZoneChanged, nil
	case "date":
		return DateChanged, nil
	default:
		return ClockChanged, fmt.Errorf("unknown time signal kind %q", s)
	}
}

// Outcome is the gate's verdict for a single time signal.
type Outcome string

const (
	OutcomeNotified   Outcome = "NOTIFIED"
	OutcomeSuppressed Outcome = "SUPPRESSED"
)

// ChannelName is the method channel the application listens on.
const ChannelName = "time_change_listener"

// MethodTimeChanged is the method pushed to the application on an eligible change.
const MethodTimeChanged = "onTimeChanged"
