package models

import "strings"

// Role decides what an operator may do to the guard.
type Role string

const (
	// RoleObserver reads state, stats and the decision log and may listen on
	// the method channel.
	RoleObserver Role = "observer"
	// RoleController may also drive the tracker and invoke channel methods.
	RoleController Role = "controller"
)

// ParseRole accepts a role name case-insensitively. Empty means observer.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleObserver:
		return RoleObserver, true
	case RoleController:
		return RoleController, true
	}
	return "", false
}

func (r Role) Valid() bool { return r == RoleObserver || r == RoleController }

// Operator is an account allowed to use the control API.
type Operator struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// Session is what a verified access token says about its bearer.
type Session struct {
	OperatorID int    `json:"operator_id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
}

// Authenticated is false for the zero Session handed to anonymous channel
// listeners.
func (s Session) Authenticated() bool { return s.OperatorID != 0 }

// CanControl reports whether the bearer may change guard state.
func (s Session) CanControl() bool { return s.Authenticated() && s.Role == RoleController }
