package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Method channel command names.
const (
	MethodReset              = "reset"
	MethodConfigureLogging   = "configureLogging"
	MethodGetPlatformVersion = "getPlatformVersion"
)

var ErrMethodNotImplemented = errors.New("method not implemented")

// GateControl is the part of the gate that commands drive.
type GateControl interface {
	Reset() error
	SetLoggingEnabled(enabled bool)
}

type CommandService struct {
	gate    GateControl
	version func() string
}

func NewCommandService(gate GateControl) *CommandService {
	return &CommandService{gate: gate, version: platformVersion}
}

// Invoke runs the named command. Unknown names fail with ErrMethodNotImplemented.
func (s *CommandService) Invoke(_ context.Context, method string, args json.RawMessage) (any, error) {
	switch method {
	case MethodReset:
		if err := s.gate.Reset(); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
		return nil, nil
	case MethodConfigureLogging:
		s.gate.SetLoggingEnabled(enableLogs(args))
		return nil, nil
	case MethodGetPlatformVersion:
		return s.version(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrMethodNotImplemented, method)
	}
}

// enableLogs reads {"enableLogs": bool}. Anything else, including a missing
// or non-boolean value, means false.
func enableLogs(args json.RawMessage) bool {
	var in struct {
		EnableLogs any `json:"enableLogs"`
	}
	if len(args) == 0 || json.Unmarshal(args, &in) != nil {
		return false
	}
	b, ok := in.EnableLogs.(bool)
	return ok && b
}
