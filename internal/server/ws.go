package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/game"
)

const (
	// sendBuffer is the number of snapshots queued per client before the
	// client is considered too slow and dropped.
	sendBuffer = 64
	writeWait  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Game is the running session as seen by the network clients.
type Game interface {
	// Command applies a named round command ("start", "restart", "stop").
	Command(action string) error
	Snapshot() game.Snapshot
}

// ServerMessage is sent to websocket clients. The first message after connect
// is a "hello" carrying the world size.
type ServerMessage struct {
	Type  string         `json:"type"`
	World *config.World  `json:"world,omitempty"`
	State *game.Snapshot `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

// ClientMessage is a command from a websocket client.
type ClientMessage struct {
	Action string `json:"action"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game snapshots out to browser clients and feeds their commands
// back to the game.
type Hub struct {
	game  Game
	world config.World

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub for g. world is announced to clients so they can
// scale the play field.
func NewHub(g Game, world config.World) *Hub {
	return &Hub{
		game:    g,
		world:   world,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves one client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.queue(ServerMessage{Type: "hello", World: &h.world})
	snap := h.game.Snapshot()
	c.queue(ServerMessage{Type: "state", State: &snap})

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	h.readLoop(c)

	h.remove(c)
}

// readLoop applies client commands until the connection fails.
func (h *Hub) readLoop(c *client) {
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := h.game.Command(msg.Action); err != nil {
			h.reply(c, ServerMessage{Type: "error", Error: err.Error()})
		}
	}
}

// reply queues a message for one client if it is still connected.
func (h *Hub) reply(c *client, m ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		c.queue(m)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast queues snap for every client. Clients whose queue is full are
// disconnected.
func (h *Hub) Broadcast(snap game.Snapshot) {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	msg, err := json.Marshal(ServerMessage{Type: "state", State: &snap})
	if err != nil {
		log.Printf("Error encoding snapshot: %v", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("Dropping slow websocket client %s", c.conn.RemoteAddr())
		h.remove(c)
		c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

// queue adds a message without blocking. Callers make sure send is open.
func (c *client) queue(m ServerMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
