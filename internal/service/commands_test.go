package service

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"strings"
	"testing"
)

type fakeGate struct {
	resets  int
	logging []bool
}

func (g *fakeGate) Reset() error { g.resets++; return nil }

func (g *fakeGate) SetLoggingEnabled(enabled bool) { g.logging = append(g.logging, enabled) }

func TestCommandService_Reset(t *testing.T) {
	g := &fakeGate{}
	svc := NewCommandService(g)

	out, err := svc.Invoke(context.Background(), MethodReset, nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if out != nil {
		t.Fatalf("reset result: want nil, got %v", out)
	}
	if g.resets != 1 {
		t.Fatalf("expected 1 reset, got %d", g.resets)
	}
}

func TestCommandService_ConfigureLogging(t *testing.T) {
	tests := []struct {
		name string
		args string
		want bool
	}{
		{"enable", `{"enableLogs": true}`, true},
		{"disable", `{"enableLogs": false}`, false},
		{"missing argument", `{}`, false},
		{"no arguments", ``, false},
		{"not a bool", `{"enableLogs": "yes"}`, false},
		{"malformed", `{"enableLogs":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGate{}
			svc := NewCommandService(g)

			if _, err := svc.Invoke(context.Background(), MethodConfigureLogging, json.RawMessage(tt.args)); err != nil {
				t.Fatalf("configureLogging: %v", err)
			}
			if len(g.logging) != 1 || g.logging[0] != tt.want {
				t.Fatalf("logging calls: want [%v], got %v", tt.want, g.logging)
			}
		})
	}
}

func TestCommandService_GetPlatformVersion(t *testing.T) {
	svc := NewCommandService(&fakeGate{})

	out, err := svc.Invoke(context.Background(), MethodGetPlatformVersion, nil)
	if err != nil {
		t.Fatalf("getPlatformVersion: %v", err)
	}
	s, ok := out.(string)
	if !ok || s == "" {
		t.Fatalf("expected non-empty string, got %#v", out)
	}
	if runtime.GOOS == "linux" && !strings.HasPrefix(s, "Linux") {
		t.Fatalf("expected Linux prefix, got %q", s)
	}
}

func TestCommandService_UnknownMethod(t *testing.T) {
	g := &fakeGate{}
	svc := NewCommandService(g)

	_, err := svc.Invoke(context.Background(), "selfDestruct", nil)
	if !errors.Is(err, ErrMethodNotImplemented) {
		t.Fatalf("expected ErrMethodNotImplemented, got %v", err)
	}
	if g.resets != 0 || len(g.logging) != 0 {
		t.Fatal("unknown method must not touch the gate")
	}
}
