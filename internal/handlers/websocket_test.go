package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"timeguard"
	"timeguard/internal/notify"
	"timeguard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func channelURL(t *testing.T, s *service.Service, hub *notify.Hub) *url.URL {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := NewHandler(s, hub, nil).InitRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = notify.ChannelPath
	return u
}

// newChannelServer dials the method channel, passing token in the query
// string when set.
func newChannelServer(t *testing.T, s *service.Service, hub *notify.Hub, token string) *websocket.Conn {
	t.Helper()
	u := channelURL(t, s, hub)
	if token != "" {
		u.RawQuery = url.Values{tokenQueryParam: {token}}.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func call(t *testing.T, conn *websocket.Conn, frame any) notify.Envelope {
	t.Helper()
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env notify.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_CommandResult(t *testing.T) {
	cmds := &mockCommands{result: "Linux 6.1"}
	conn := newChannelServer(t, &service.Service{Operators: newMockOperators(), Commands: cmds}, nil, controllerToken)

	env := call(t, conn, map[string]any{"id": "7", "method": "getPlatformVersion"})
	if env.Type != notify.TypeResult || env.ID != "7" || env.Data != "Linux 6.1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestWebSocket_BearerHeaderOnUpgrade(t *testing.T) {
	cmds := &mockCommands{result: "ok"}
	u := channelURL(t, &service.Service{Operators: newMockOperators(), Commands: cmds}, nil)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), authHeader(controllerToken))
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	env := call(t, conn, map[string]any{"id": "1", "method": "reset"})
	if env.Type != notify.TypeResult {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestWebSocket_CommandErrors(t *testing.T) {
	cmds := &mockCommands{err: service.ErrMethodNotImplemented}
	conn := newChannelServer(t, &service.Service{Operators: newMockOperators(), Commands: cmds}, nil, controllerToken)

	env := call(t, conn, map[string]any{"id": "1", "method": "teleport"})
	if env.Type != notify.TypeError || env.ID != "1" || env.Code != codeNotImplemented {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	// malformed frame
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	env = notify.Envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != notify.TypeError || env.Code != codeBadRequest {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestWebSocket_AnonymousClientCannotInvoke(t *testing.T) {
	cmds := &mockCommands{result: "ok"}
	conn := newChannelServer(t, &service.Service{Operators: newMockOperators(), Commands: cmds}, nil, "")

	env := call(t, conn, map[string]any{"id": "3", "method": "reset"})
	if env.Type != notify.TypeError || env.ID != "3" || env.Code != codeUnauthorized {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	cmds.mu.Lock()
	defer cmds.mu.Unlock()
	if cmds.lastName != "" {
		t.Fatalf("anonymous frame reached the commands service: %q", cmds.lastName)
	}
}

func TestWebSocket_ObserverCannotInvoke(t *testing.T) {
	cmds := &mockCommands{result: "ok"}
	conn := newChannelServer(t, &service.Service{Operators: newMockOperators(), Commands: cmds}, nil, observerToken)

	env := call(t, conn, map[string]any{"id": "4", "method": "configureLogging", "arguments": map[string]bool{"enableLogs": true}})
	if env.Type != notify.TypeError || env.Code != codeForbidden {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	cmds.mu.Lock()
	defer cmds.mu.Unlock()
	if cmds.lastName != "" {
		t.Fatalf("observer frame reached the commands service: %q", cmds.lastName)
	}
}

func TestWebSocket_InvalidTokenRejectedOnUpgrade(t *testing.T) {
	hub := notify.NewHub(nil)
	u := channelURL(t, &service.Service{Operators: newMockOperators()}, hub)
	u.RawQuery = url.Values{tokenQueryParam: {"stale"}}.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, resp, err := dialer.Dial(u.String(), nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("upgrade with an invalid token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on upgrade, got %+v", resp)
	}
	if hub.Len() != 0 {
		t.Fatal("rejected client registered with the hub")
	}
}

func TestWebSocket_ReceivesTimeChanged(t *testing.T) {
	hub := notify.NewHub(nil)
	conn := newChannelServer(t, &service.Service{}, hub, "")

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.Deliver(notify.Notification{ID: "n1", Method: timeguard.MethodTimeChanged, At: time.Now()}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env notify.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != notify.TypeMethod || env.Method != timeguard.MethodTimeChanged {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
