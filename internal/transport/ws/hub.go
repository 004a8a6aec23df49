package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgPlayerJoined  MessageType = "player_joined"
	MsgRolesAssigned MessageType = "roles_assigned"
	MsgVotingStarted MessageType = "voting_started"
	MsgVoteCast      MessageType = "vote_cast"
	MsgResultsReady  MessageType = "results_ready"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session lifecycle events out to every watcher of a session code.
// Watchers are read-only; all game input goes through the REST API.
type Hub struct {
	watchers map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one watcher of a session feed.
type Connection struct {
	SessionCode string
	Send        chan []byte
	Hub         *Hub
}

// BroadcastMessage is a message to fan out to a session's watchers.
type BroadcastMessage struct {
	SessionCode string
	Message     *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.SessionCode] == nil {
				h.watchers[conn.SessionCode] = make(map[*Connection]bool)
			}
			h.watchers[conn.SessionCode][conn] = true
			h.mu.Unlock()
			log.Printf("Watcher connected to session %s", conn.SessionCode)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.SessionCode]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.watchers, conn.SessionCode)
					}
					log.Printf("Watcher disconnected from session %s", conn.SessionCode)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.watchers[msg.SessionCode] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends an event to every watcher of a session
// (implements service.Broadcaster).
func (h *Hub) BroadcastToSession(code string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionCode: code,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
