package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/calvinwijaya/counterpoint/internal/store"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the HTTP routes
	},
}

// Message types sent over the websocket
const (
	MessageWelcome     = "welcome"
	MessageTableUpdate = "tableUpdate"
	MessageSync        = "sync"
	MessageError       = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	TableID string      `json:"tableId,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	tableID string
	hub     *Hub
}

// Hub maintains the set of active clients and pushes table updates to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	tables     map[string]map[*Client]bool
	snapshot   func(tableID string) (interface{}, bool)
	logger     *zap.Logger
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		tables:     make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// SetSnapshotFunc sets how the hub looks up the current state of a table for
// newly connected clients and sync requests
func (h *Hub) SetSnapshotFunc(fn func(tableID string) (interface{}, bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = fn
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, exists := h.tables[client.tableID]; !exists {
				h.tables[client.tableID] = make(map[*Client]bool)
			}
			h.tables[client.tableID][client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", zap.String("table_id", client.tableID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// remove drops a client. The caller holds the write lock.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if h.tables[client.tableID] != nil {
		delete(h.tables[client.tableID], client)
		// Clean up empty tables
		if len(h.tables[client.tableID]) == 0 {
			delete(h.tables, client.tableID)
		}
	}
}

// ClientCount returns the number of clients watching a table
func (h *Hub) ClientCount(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// BroadcastToTable sends a message to all clients in a specific table
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.String("table_id", tableID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tables[tableID] {
		select {
		case client.send <- data:
		default:
			// Slow clients miss this update and resync on the next one
			h.logger.Warn("dropping message for slow client", zap.String("table_id", tableID))
		}
	}
}

// BroadcastTableUpdate sends the table's latest snapshot to its clients
func (h *Hub) BroadcastTableUpdate(t store.Table) {
	h.BroadcastToTable(t.ID, Message{
		Type:    MessageTableUpdate,
		TableID: t.ID,
		Data:    t,
	})
}

// sendSnapshot sends the current table state to one client
func (h *Hub) sendSnapshot(c *Client) {
	h.mu.RLock()
	lookup := h.snapshot
	h.mu.RUnlock()
	if lookup == nil {
		return
	}

	msg := Message{Type: MessageTableUpdate, TableID: c.tableID}
	if data, ok := lookup(c.tableID); ok {
		msg.Data = data
	} else {
		msg.Type = MessageError
		msg.Data = map[string]string{"error": "Table not found"}
	}
	c.enqueue(msg)
}

// WebSocketHandler handles WebSocket connections for one table
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	if tableID == "" {
		errorResponse(w, http.StatusBadRequest, "tableId is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, 256),
		tableID: tableID,
		hub:     h,
	}
	h.register <- client

	// Send a welcome message followed by the current state
	client.enqueue(Message{
		Type:    MessageWelcome,
		TableID: tableID,
		Data: map[string]string{
			"message": "Connected to Counterpoint table server",
		},
	})
	h.sendSnapshot(client)

	// Start goroutines for reading and writing
	go client.readPump()
	go client.writePump()
}

// enqueue queues a message for this client only. It must not be called after
// readPump has returned, since the hub closes send on unregister.
func (c *Client) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads client requests until the connection closes. Clients can ask
// for a fresh snapshot with a sync message.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", zap.String("table_id", c.tableID), zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Debug("ignoring malformed websocket message", zap.Error(err))
			continue
		}
		if msg.Type == MessageSync {
			c.hub.sendSnapshot(c)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
