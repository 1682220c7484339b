package models

import "time"

// GuardDecision is one persisted gate verdict.
type GuardDecision struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Kind        string    `json:"kind"`         // clock | timezone | date
	Visibility  string    `json:"visibility"`   // foreground | background
	ScreenPower string    `json:"screen_power"` // on | off
	Decision    string    `json:"decision"`     // NOTIFIED | SUPPRESSED
}

// DecisionFilter narrows a decision listing. Zero fields do not filter.
type DecisionFilter struct {
	From     time.Time
	To       time.Time
	Kind     string
	Decision string
	Limit    int
}
