package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"whackamole/internal/analytics"
)

// Client message types.
const (
	TypeDown = "down" // pointer down on a cell
	TypePing = "ping"
)

// Server message types.
const (
	TypeTimer  = "timer"
	TypeScore  = "score"
	TypeLives  = "lives"
	TypeActive = "active"
	TypeHit    = "hit"
	TypeNotice = "notice"
	TypeResult = "result" // reply to a down
	TypeError  = "error"
	TypePong   = "pong"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type string `json:"t"`
	Cell int    `json:"id,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type    string            `json:"t"`
	Value   int               `json:"v"`
	Cell    int               `json:"id,omitempty"`
	Text    string            `json:"msg,omitempty"`
	Best    int               `json:"best,omitempty"`
	NewBest bool              `json:"newBest,omitempty"`
	Badges  []analytics.Badge `json:"badges,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 64),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the WebSocket connections watching one session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Reply queues msg for client id only. It reports false when the client is
// no longer registered or its channel is full.
func (h *Hub) Reply(id string, msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("component", "wshub").Msg("marshal error")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Broadcast sends msg to every client. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("component", "wshub").Msg("marshal error")
		return
	}
	h.BroadcastRaw(data)
}

func (h *Hub) BroadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// Close unregisters every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
