package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"timeguard/internal/models"
	"timeguard/internal/notify"
	"timeguard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Error codes on the method channel.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeFailed       = "failed"
)

// methodCall is a command frame sent by an application client.
type methodCall struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Upgrader for HTTP -> WebSocket. Clients are local applications.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Method channel
// @Description  Upgrades to a websocket. The server pushes {"type":"method","method":"onTimeChanged"} to every client. Command frames {"id","method","arguments"} need a controller token, passed as a Bearer header or the access_token query parameter; clients without a token only listen.
// @Tags         channel
// @Param        access_token  query  string  false  "bearer token"
// @Failure      401  {object}  map[string]string
// @Router       /ws/time_change_listener [get]
func (h *Handler) wsConnect(c *gin.Context) {
	sess, err := h.authenticate(c.Request)
	if err != nil && !errors.Is(err, errMissingToken) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	if h.log != nil {
		h.log.Debugw("ws_session", "operator", sess.Name, "role", sess.Role, "control", sess.CanControl())
	}
	ctx := c.Request.Context()
	h.hub.Serve(ctx, conn, func(client *notify.Client, data []byte) {
		h.onChannelMessage(ctx, sess, client, data)
	})
}

// onChannelMessage answers a client command on the same connection.
func (h *Handler) onChannelMessage(ctx context.Context, sess models.Session, client *notify.Client, data []byte) {
	var call methodCall
	if err := json.Unmarshal(data, &call); err != nil || call.Method == "" {
		client.Send(notify.Envelope{Type: notify.TypeError, ID: call.ID, Code: codeBadRequest, Error: "malformed method call"})
		return
	}

	switch {
	case !sess.Authenticated():
		client.Send(notify.Envelope{Type: notify.TypeError, ID: call.ID, Method: call.Method, Code: codeUnauthorized, Error: errMissingToken.Error()})
		return
	case !sess.CanControl():
		client.Send(notify.Envelope{Type: notify.TypeError, ID: call.ID, Method: call.Method, Code: codeForbidden, Error: errCannotControl.Error()})
		return
	}

	out, err := h.services.Commands.Invoke(ctx, call.Method, call.Arguments)
	if err != nil {
		env := notify.Envelope{Type: notify.TypeError, ID: call.ID, Method: call.Method, Code: codeFailed, Error: err.Error()}
		if errors.Is(err, service.ErrMethodNotImplemented) {
			env.Code = codeNotImplemented
		}
		client.Send(env)
		return
	}
	client.Send(notify.Envelope{Type: notify.TypeResult, ID: call.ID, Method: call.Method, Data: out})
}
