package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one client WebSocket connection
type Connection struct {
	UserID string
	Send   chan []byte
	Hub    *Hub
}

type userMessage struct {
	UserID  string
	Message *Message
}

// Hub fans lifecycle events out to a user's open connections. Events are
// advisory (a reloaded tab learning about its active session); dropped
// messages are never an error.
type Hub struct {
	conns map[string]map[*Connection]bool // userID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *userMessage
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *userMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.UserID] == nil {
				h.conns[conn.UserID] = make(map[*Connection]bool)
			}
			h.conns[conn.UserID][conn] = true
			h.mu.Unlock()
			log.Printf("user %s connected to event stream", conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.UserID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, conn.UserID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("user %s disconnected from event stream", conn.UserID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.UserID] {
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

// PublishToUser sends an event to all of the user's connections (implements
// service.Broadcaster).
func (h *Hub) PublishToUser(userID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &userMessage{
		UserID: userID,
		Message: &Message{
			Event:   event,
			Payload: data,
		},
	}
}
