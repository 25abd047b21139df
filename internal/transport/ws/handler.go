package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"prepdeck/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated candidates to the event stream.
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService) *Handler {
	return &Handler{hub: hub, authSvc: authSvc}
}

// Events handles GET /v1/ws?token=...
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authSvc.ValidateCandidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	conn := &Connection{
		UserID: claims.UserID,
		Send:   make(chan []byte, 64),
		Hub:    h.hub,
	}
	h.hub.Register(conn)

	go conn.writePump(socket)
	go conn.readPump(socket)
}

// readPump discards client messages; the stream is server-to-client only.
func (c *Connection) readPump(socket *websocket.Conn) {
	defer func() {
		c.Hub.Unregister(c)
		socket.Close()
	}()
	socket.SetReadLimit(512)
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Connection) writePump(socket *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		socket.Close()
	}()
	for {
		select {
		case data, ok := <-c.Send:
			socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
