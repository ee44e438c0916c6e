package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"watchtower/internal/logging"
	"watchtower/internal/metrics"
	"watchtower/internal/models"
)

// Hub maintains the set of connected observers and fans event
// notifications out to all of them. Registration, unregistration and
// broadcasting are serialized through the Run loop; delivery to a single
// dead or slow observer never blocks the others.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     logging.Logger
	metrics    *metrics.Metrics
	mutex      sync.RWMutex
}

// Client represents a WebSocket observer connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger logging.Logger

	// mu guards closed so that sends never race the hub-side close
	mu     sync.Mutex
	closed bool
}

// trySend delivers a message to the client without blocking. It returns
// false when the buffer is full or the client has already been removed.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend marks the client removed and closes its send channel, which
// terminates the write pump. Only removeClient calls this, and only once
// per client.
func (c *Client) closeSend() {
	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub(logger logging.Logger, serviceMetrics *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    serviceMetrics,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			if h.metrics != nil {
				h.metrics.HubConnections.WithLabelValues().Set(float64(count))
			}
			h.logger.WithField("client_count", count).Info("Observer connected")

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// BroadcastEvent queues an event notification for delivery to every
// observer connected at the time the hub processes it. Delivery is
// best-effort; the caller never sees per-observer failures.
func (h *Hub) BroadcastEvent(notification models.EventNotification) {
	message, err := json.Marshal(notification)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal event notification")
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Broadcast channel full, dropping notification")
	}
}

// broadcastMessage delivers a marshalled notification to the observers
// present right now. The set is snapshotted under the read lock so a slow
// write to one connection cannot stall registration or other deliveries.
func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.RLock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.mutex.RUnlock()

	var dead []*Client
	for _, client := range snapshot {
		if client.trySend(message) {
			if h.metrics != nil {
				h.metrics.HubMessages.WithLabelValues("delivered").Inc()
			}
			continue
		}
		// Send buffer full: the observer is dead or hopelessly
		// behind. Treat as an implicit disconnect.
		dead = append(dead, client)
		if h.metrics != nil {
			h.metrics.HubMessages.WithLabelValues("dropped").Inc()
		}
	}

	for _, client := range dead {
		h.removeClient(client)
		h.logger.Warn("Dropped unresponsive observer during broadcast")
	}
}

// removeClient safely removes a client from the set. Removing an absent
// client is a no-op.
func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		client.closeSend()
	}
	count := len(h.clients)
	h.mutex.Unlock()

	if ok {
		if h.metrics != nil {
			h.metrics.HubConnections.WithLabelValues().Set(float64(count))
		}
		h.logger.WithField("client_count", count).Info("Observer disconnected")
	}
}

// ClientCount returns the number of currently connected observers
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// GetStats returns hub statistics
func (h *Hub) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"connections": h.ClientCount(),
	}
}

// ServeWS handles WebSocket requests from observers
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: h.logger,
	}

	client.hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// readPump pumps messages from the WebSocket connection to the hub.
// Observers may send arbitrary text; it is echoed back through the write
// pump so that connection writes stay single-owner.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("WebSocket connection error")
			}
			break
		}

		if c.hub.metrics != nil {
			c.hub.metrics.HubMessages.WithLabelValues("echo").Inc()
		}

		c.trySend(append([]byte("Echo: "), message...))
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything queued behind the current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
