package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is the envelope pushed to connected players.
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Snapshot  interface{} `json:"snapshot,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Client is one player's WebSocket connection.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	playerID  string
}

// Hub tracks connections per session and fans updates out to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool
	log      zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Client]bool),
		log:      log.With().Str("component", "ws").Logger(),
	}
}

// ServeWS upgrades the request and binds the connection to a session
// seat. Multiple connections for the same seat are allowed; each gets
// its own pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		playerID:  playerID,
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

// PushSnapshots delivers a fresh view to every connection in a session.
// The view callback is invoked once per connected player id, so each
// seat only ever sees its own board.
func (h *Hub) PushSnapshots(sessionID string, view func(playerID string) (interface{}, error)) {
	// Hold the read lock across the enqueues so no client's send channel
	// is closed underneath us. unregister needs the write lock.
	h.mu.RLock()
	defer h.mu.RUnlock()

	rendered := make(map[string][]byte, 2)
	for client := range h.sessions[sessionID] {
		data, ok := rendered[client.playerID]
		if !ok {
			snap, err := view(client.playerID)
			if err != nil {
				h.log.Warn().Err(err).Str("session", sessionID).Str("player", client.playerID).
					Msg("snapshot render failed")
				continue
			}
			data, err = json.Marshal(&Message{
				SessionID: sessionID,
				Event:     "state_update",
				Snapshot:  snap,
			})
			if err != nil {
				h.log.Error().Err(err).Msg("failed to marshal websocket message")
				continue
			}
			rendered[client.playerID] = data
		}
		client.enqueue(data)
	}
}

// BroadcastEvent sends a custom event to all connections in a session.
func (h *Hub) BroadcastEvent(sessionID, event string, payload interface{}) {
	data, err := json.Marshal(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      payload,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.sessions[sessionID] {
		client.enqueue(data)
	}
}

// ClientCount reports the number of connections bound to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	total := len(h.sessions[client.sessionID])
	h.mu.Unlock()

	h.log.Debug().Str("session", client.sessionID).Str("player", client.playerID).
		Int("clients", total).Msg("client registered")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}
		}
	}
	h.mu.Unlock()
}

// enqueue hands a message to the client's writer. A client that cannot
// keep up is dropped.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		go c.hub.unregister(c)
	}
}

// readPump drains the connection to keep it alive. Client messages
// carry no game actions.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
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

			// Add queued messages to the current WebSocket message
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
