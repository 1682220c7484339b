package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"timeguard"
	"timeguard/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	sendBuffer = 16
)

// Envelope types on the method channel.
const (
	TypeMethod = "method"
	TypeResult = "result"
	TypeError  = "error"
)

// Envelope is every frame written to a client.
type Envelope struct {
	Type   string      `json:"type"`
	ID     string      `json:"id,omitempty"`
	Method string      `json:"method,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Code   string      `json:"code,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Client is one websocket connection on the method channel.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *Client) ID() string { return c.id }

// Send queues an envelope for the client. It returns false when the
// client's buffer is full or it has gone away.
func (c *Client) Send(env Envelope) bool {
	b, err := json.Marshal(env)
	if err != nil {
		return false
	}
	return c.trySend(b)
}

func (c *Client) trySend(b []byte) (ok bool) {
	defer func() {
		// send on a channel closed by a concurrent drop
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks connected clients and broadcasts notifications to them.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	quit     chan struct{}
	quitOnce sync.Once
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:     log.Named("hub"),
		clients: make(map[string]*Client),
		quit:    make(chan struct{}),
	}
}

// Close tells every connected client the server is going away. http.Server
// Shutdown does not cancel hijacked connections, so this must be called
// before it.
func (h *Hub) Close() {
	h.quitOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver implements Subscriber. Clients that cannot keep up are dropped.
func (h *Hub) Deliver(n Notification) error {
	b, err := json.Marshal(Envelope{Type: TypeMethod, Method: n.Method, Data: n})
	if err != nil {
		return err
	}

	h.mu.RLock()
	var slow []*Client
	for _, c := range h.clients {
		if !c.trySend(b) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warnw("ws_client_too_slow", "client", c.id)
		h.unregister(c)
	}
	return nil
}

func (h *Hub) register(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Infow("ws_client_connected", "client", c.id, "total", total)
	return c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.log.Infow("ws_client_disconnected", "client", c.id, "total", total)
	}
}

// Serve runs the client's pumps until the connection closes, ctx is done or
// the hub is closed. A closed hub turns away new connections.
// onMessage is called on the read goroutine for every text frame.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, onMessage func(c *Client, data []byte)) {
	select {
	case <-h.quit:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	default:
	}

	c := h.register(conn)
	defer h.unregister(c)

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.readPump(c, onMessage, done)
	h.writePump(ctx, c, done)
}

func (h *Hub) readPump(c *Client, onMessage func(c *Client, data []byte), done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			h.log.Debugw("ws_read_closed", "client", c.id, "err", err)
			return
		}
		if onMessage != nil {
			onMessage(c, data)
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *Client, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-h.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Infow("ws_write_failed", "client", c.id, "err", err)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "client", c.id, "err", err)
				return
			}
		}
	}
}

// ChannelPath is the websocket route for the method channel.
const ChannelPath = "/ws/" + timeguard.ChannelName
