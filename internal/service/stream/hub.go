package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin policy is not enforced; auth is out of scope here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans live ticks out to websocket subscribers. Clients send
// subscribe/unsubscribe control messages and receive tick JSON for the
// symbols they follow.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	l       *applogger.Logger
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	symbols map[string]struct{}
	mu      sync.RWMutex
}

type controlMessage struct {
	Type   string `json:"type"` // "subscribe" | "unsubscribe"
	Symbol string `json:"symbol"`
}

func NewHub(l *applogger.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), l: l}
}

// ServeWS upgrades the request and runs the client pumps until disconnect.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, clientSendSize),
		symbols: make(map[string]struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Broadcast sends a tick to every client subscribed to its symbol. Slow
// clients drop messages instead of blocking the pipeline.
func (h *Hub) Broadcast(t *models.Tick) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.subscribed(t.Symbol) {
			continue
		}
		select {
		case c.send <- b:
		default:
			// drop on backpressure
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(b, &msg); err != nil || msg.Symbol == "" {
			continue
		}
		switch msg.Type {
		case "subscribe":
			c.mu.Lock()
			c.symbols[msg.Symbol] = struct{}{}
			c.mu.Unlock()
		case "unsubscribe":
			c.mu.Lock()
			delete(c.symbols, msg.Symbol)
			c.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
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

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
	if h.l != nil {
		h.l.Debug("ws client disconnected")
	}
}

func (c *client) subscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.symbols[symbol]
	return ok
}
