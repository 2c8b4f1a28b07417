package scene

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voice-scene/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// UnrecognizedText is shown when a recording produced no transcript.
const UnrecognizedText = "could not recognize speech"

type Message struct {
	Type      string            `json:"type"`
	Text      string            `json:"text,omitempty"`
	Transform *domain.Transform `json:"transform,omitempty"`
	Seconds   float64           `json:"seconds,omitempty"`
	Node      *Node             `json:"node,omitempty"`
	Nodes     []Node            `json:"nodes,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub applies transforms to the scene and fans every change out to the
// websocket clients. Broadcasting never blocks: a client whose buffer is
// full misses the message.
type Hub struct {
	scene    *Scene
	logger   *slog.Logger
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

func NewHub(scene *Scene, buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		scene:  scene,
		logger: logger,
		buffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Apply implements the spatial effect.
func (h *Hub) Apply(t domain.Transform) {
	node, ok := h.scene.Apply(t)
	if !ok {
		h.logger.Warn("transform for unknown target", "target", t.Target)
		return
	}

	h.logger.Info("applied transform",
		"kind", t.Kind,
		"target", t.Target,
		"duration", t.Duration,
	)
	h.broadcast(Message{Type: "effect", Transform: &t, Seconds: t.Duration.Seconds(), Node: &node})
}

func (h *Hub) ShowTranscript(text string) {
	h.broadcast(Message{Type: "transcript", Text: text})
}

func (h *Hub) ShowUnrecognized() {
	h.broadcast(Message{Type: "unrecognized", Text: UnrecognizedText})
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshaling scene message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("scene client too slow, dropping message", "client", c.id, "type", msg.Type)
		}
	}
}

// Routes registers the scene endpoints.
func (h *Hub) Routes(handle func(pattern string, handler http.Handler)) {
	handle("GET /scene", http.HandlerFunc(h.handleState))
	handle("GET /scene/ws", http.HandlerFunc(h.handleWS))
}

func (h *Hub) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Message{Type: "state", Nodes: h.scene.Snapshot()})
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.buffer),
	}

	state, _ := json.Marshal(Message{Type: "state", Nodes: h.scene.Snapshot()})
	c.send <- state

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Info("scene client connected", "client", c.id, "remote_addr", r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
		h.logger.Info("scene client disconnected", "client", c.id)
	}
}

// readPump discards incoming frames; it exists to process control
// messages and notice when the peer goes away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
