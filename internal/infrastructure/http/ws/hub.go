// Package ws streams workspace snapshots to connected clients over WebSocket
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/infrastructure/http/middleware"
	"github.com/mealsmith/v2/internal/ports/inbound"
	"github.com/mealsmith/v2/internal/ports/outbound"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

// Event is the wire format pushed to clients
type Event struct {
	Type        string                 `json:"type"`
	WorkspaceID string                 `json:"workspaceId"`
	Data        *inbound.WorkspaceView `json:"data,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Hub fans workspace snapshots out to the WebSocket clients watching each
// workspace. Notifications never block the caller: a client that cannot
// keep up is dropped.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mutex   sync.RWMutex
	clients map[string]map[*client]struct{}
	closed  bool
}

type client struct {
	workspaceID string
	conn        *websocket.Conn
	send        chan []byte
	closeOnce   sync.Once
}

var _ outbound.WorkspaceNotifier = (*Hub)(nil)

// NewHub creates a new workspace event hub
func NewHub(cfg *config.Config, logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(cfg, origin, r.Host)
			},
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// NotifyWorkspaceChanged pushes the workspace state to every client
// watching it
func (h *Hub) NotifyWorkspaceChanged(workspaceID string, ws *session.Workspace) {
	h.mutex.RLock()
	watchers := len(h.clients[workspaceID])
	h.mutex.RUnlock()
	if watchers == 0 {
		return
	}

	payload, err := json.Marshal(Event{
		Type:        "workspace",
		WorkspaceID: workspaceID,
		Data:        inbound.NewWorkspaceView(ws),
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("failed to encode workspace event", zap.Error(err))
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for c := range h.clients[workspaceID] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: kill the connection and let its read pump
			// unregister it. Snapshots are full states, so the client
			// loses nothing it cannot recover on the next transition.
			go c.conn.Close()
		}
	}
}

// Handle handles GET /api/v1/workspace/events. The workspace id comes from
// the resolution middleware, so the socket only ever sees its own workspace.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := middleware.WorkspaceIDFromContext(r.Context())
	if !ok {
		http.Error(w, "workspace not resolved", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		workspaceID: workspaceID,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
	}

	if !h.register(c) {
		conn.Close()
		return
	}

	h.logger.Debug("client connected", zap.String("workspace_id", workspaceID))

	go h.writePump(c)
	go h.readPump(c)

	h.sendHello(c)
}

// Close disconnects every client. New connections are refused afterwards.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for _, watchers := range h.clients {
		for c := range watchers {
			c.close()
		}
	}
	h.clients = make(map[string]map[*client]struct{})
}

func (h *Hub) register(c *client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return false
	}
	if h.clients[c.workspaceID] == nil {
		h.clients[c.workspaceID] = make(map[*client]struct{})
	}
	h.clients[c.workspaceID][c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if watchers, ok := h.clients[c.workspaceID]; ok {
		delete(watchers, c)
		if len(watchers) == 0 {
			delete(h.clients, c.workspaceID)
		}
	}
}

// sendHello queues the greeting. Sends into the channel only happen under
// the hub lock; close only happens under the write lock or after the client
// is unregistered.
func (h *Hub) sendHello(c *client) {
	payload, err := json.Marshal(Event{
		Type:        "hello",
		WorkspaceID: c.workspaceID,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames. The stream is one-way; reading only
// services pongs and detects the close.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.close()
		c.conn.Close()
		h.logger.Debug("client disconnected", zap.String("workspace_id", c.workspaceID))
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func originAllowed(cfg *config.Config, origin, host string) bool {
	if cfg.IsDevelopment() {
		return true
	}
	if origin == "http://"+host || origin == "https://"+host {
		return true
	}
	for _, allowed := range cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
