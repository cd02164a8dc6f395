package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/seenimoa/cryptodetails/internal/lookup"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; restrict in production
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64
)

// Message types on the /ws stream.
const (
	MsgTypeState  = "state"
	MsgTypeError  = "error"
	MsgTypeLookup = "lookup"
	MsgTypePing   = "ping"
	MsgTypePong   = "pong"
)

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsInbound is a message received from a client. Data is decoded per type.
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func stateMessage(st lookup.State) WSMessage {
	return WSMessage{Type: MsgTypeState, Data: st.View()}
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSHub tracks WebSocket clients and fans broadcast messages out to them.
type WSHub struct {
	mu        sync.RWMutex
	clients   map[*WSClient]bool
	stopped   bool
	broadcast chan WSMessage
	log       zerolog.Logger
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	id   string
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(l zerolog.Logger) *WSHub {
	return &WSHub{
		clients:   make(map[*WSClient]bool),
		broadcast: make(chan WSMessage, 256),
		log:       l,
	}
}

func newWSClient(h *WSHub) *WSClient {
	return &WSClient{
		id:   uuid.NewString(),
		hub:  h,
		send: make(chan WSMessage, sendBuffer),
	}
}

// ID returns the client's connection id.
func (c *WSClient) ID() string { return c.id }

// Run fans out broadcasts until ctx is done, then disconnects every client.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case msg := <-h.broadcast:
			var slow []*WSClient
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				h.log.Warn().Str("client", client.id).Msg("dropping slow WebSocket client")
				h.Unregister(client)
			}
		}
	}
}

// Broadcast queues msg for every connected client. The message is dropped
// when the queue is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", msg.Type).Msg("broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. It returns false once the hub has
// stopped; the client's send channel is closed in that case.
func (h *WSHub) Register(client *WSClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(client.send)
		return false
	}
	h.clients[client] = true
	return true
}

// Unregister removes a client and closes its send channel. Safe to call
// more than once.
func (h *WSHub) Unregister(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// SendTo queues msg for one client without blocking. It reports false if the
// client is gone or its buffer is full.
func (h *WSHub) SendTo(client *WSClient, msg WSMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

// ============================================================
// Connection handling
// ============================================================

// handleWebSocket upgrades the connection, sends the current state, and then
// streams every state transition. Clients may submit lookups with
// {"type":"lookup","data":{"symbol":"BTC"}}.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := newWSClient(s.wsHub)
	if !s.wsHub.Register(client) {
		conn.Close()
		return
	}
	s.log.Debug().Str("client", client.id).Msg("WebSocket client connected")

	s.wsHub.SendTo(client, stateMessage(s.flow.State()))

	go wsWritePump(conn, client)
	go wsReadPump(conn, client, s)
}

// wsReadPump reads client messages until the connection fails.
func wsReadPump(conn *websocket.Conn, client *WSClient, s *Server) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Str("client", client.id).Msg("WebSocket read error")
			}
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgTypePing:
			client.hub.SendTo(client, WSMessage{Type: MsgTypePong})
		case MsgTypeLookup:
			var req LookupRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				client.hub.SendTo(client, WSMessage{Type: MsgTypeError, Data: "invalid lookup payload"})
				continue
			}
			// Transitions reach this client through the broadcast.
			go func(symbol string) {
				if _, err := s.flow.Submit(context.Background(), symbol); err != nil {
					text := err.Error()
					var le *lookup.Error
					if errors.As(err, &le) {
						text = le.Message()
					}
					client.hub.SendTo(client, WSMessage{Type: MsgTypeError, Data: text})
				}
			}(req.Symbol)
		}
	}
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
