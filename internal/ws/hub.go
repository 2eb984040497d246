package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// sendBuffer is the per-client outbound queue. A client that falls
	// this far behind is disconnected rather than blocking the hub.
	sendBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// HubConfig holds configuration for the hub.
type HubConfig struct {
	// AllowedOrigins restricts WebSocket handshakes. Empty allows all,
	// intended for development only.
	AllowedOrigins []string

	// Logger for hub operations.
	Logger zerolog.Logger
}

// Hub tracks connected clients by room and fans events out to them.
type Hub struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	room string
	send chan Event

	closeOnce sync.Once
}

// NewHub creates a new hub.
func NewHub(cfg HubConfig) *Hub {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	hub := &Hub{
		logger: cfg.Logger,
		rooms:  make(map[string]map[*client]struct{}),
	}

	hub.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}

	return hub
}

// ServeHTTP upgrades the connection and joins the client to its room. The
// room comes from the "room" query parameter, defaulting to the dashboard.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = DefaultRoom
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		room: room,
		send: make(chan Event, sendBuffer),
	}

	h.register(c)
	c.send <- NewEvent(EventWelcome, room, map[string]any{
		"room":    room,
		"message": "connected to airsight live updates",
	})

	go c.writePump()
	go c.readPump()
}

// Broadcast sends an event to every client in a room. Clients whose send
// queue is full are dropped.
func (h *Hub) Broadcast(room string, event Event) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- event:
		default:
			h.logger.Warn().Str("room", room).Msg("dropping slow websocket client")
			c.close()
		}
	}
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}
	return total
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}

	h.logger.Debug().Str("room", c.room).Int("room_size", len(h.rooms[c.room])).
		Msg("websocket client joined")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[c.room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, c.room)
		}
	}
}

// close tears the client down once, no matter how many paths reach it. The
// send channel is never closed; closing the connection unwinds both pumps,
// and the channel is collected with the client.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	})
}

// readPump discards inbound messages and watches for disconnects.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
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
