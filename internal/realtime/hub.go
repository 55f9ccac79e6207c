package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ordersetu-be/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client to server message types.
const (
	JoinCustomer = "JOIN_CUSTOMER"
	JoinChef     = "JOIN_CHEF"
	JoinWorker   = "JOIN_WORKER"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendQueueFull  = errors.New("send queue full")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingKey     = errors.New("join message without subscriber key")
)

type joinMessage struct {
	Type             string `json:"type"`
	ConfirmedOrderID string `json:"confirmedOrderId"`
	RestaurantID     string `json:"restaurantId"`
	WorkerID         string `json:"workerId"`
}

// Hub upgrades HTTP requests to websocket connections and registers them
// in the Registry when they send a join message.
type Hub struct {
	registry *Registry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub accepts upgrades from allowedOrigin only; an empty value accepts
// any origin.
func NewHub(registry *Registry, allowedOrigin string) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}

	log.Debug("websocket connected", zap.String("remote", conn.RemoteAddr().String()))
	go c.writePump()
	go c.readPump()
}

// handleMessage applies one client message. Joins for a key that already
// has a connection replace it.
func (h *Hub) handleMessage(c Conn, data []byte) error {
	var msg joinMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	var (
		role Role
		key  string
	)
	switch msg.Type {
	case JoinCustomer:
		role, key = RoleCustomer, msg.ConfirmedOrderID
	case JoinChef:
		role, key = RoleChef, msg.RestaurantID
	case JoinWorker:
		role, key = RoleWorker, msg.WorkerID
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	if key == "" {
		return ErrMissingKey
	}

	h.registry.Register(role, key, c)
	logger.L().Debug("subscriber joined", zap.String("role", string(role)), zap.String("key", key))
	return nil
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	h.registry.Unregister(c)
	c.close()
}

// Shutdown closes every connection and clears the registry. The hub
// refuses new connections afterwards.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.registry.Reset()
}

type client struct {
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *client) Deliver(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if err := c.hub.handleMessage(c, data); err != nil {
			logger.L().Warn("websocket message ignored", zap.Error(err))
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
