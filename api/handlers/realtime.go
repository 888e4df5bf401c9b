package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/databases"
	"github.com/sports-hub/sports-hub-api/models"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by the frontend deployment
	},
}

// wsFrame is the envelope for every inbound websocket message on either path
type wsFrame struct {
	Type      string `json:"type"`
	UserEmail string `json:"userEmail,omitempty"`
	TeamName  string `json:"teamName,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Text      string `json:"text,omitempty"`
}

// NotificationHub maps a user email to at most one live connection.
// Registering the same email again replaces the earlier mapping; a user is
// assumed to have one active session.
type NotificationHub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewNotificationHub creates an empty notification registry
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[string]*websocket.Conn)}
}

// Register maps an email to a connection, last-registered-wins
func (h *NotificationHub) Register(email string, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[email] = conn
	h.mu.Unlock()
	zap.S().Debugf("notification client registered for: %s", email)
}

// Unregister removes a connection by identity comparison rather than by key,
// since the register frame may never have arrived.
func (h *NotificationHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for email, c := range h.clients {
		if c == conn {
			delete(h.clients, email)
			zap.S().Debugf("notification client disconnected: %s", email)
			break
		}
	}
}

// Send pushes a notification frame to the user's live connection, if any.
// Returns true only when the write succeeded; delivery is best-effort.
func (h *NotificationHub) Send(email string, notification models.Notification) bool {
	h.mu.Lock()
	conn, ok := h.clients[email]
	h.mu.Unlock()
	if !ok {
		return false
	}

	err := conn.WriteJSON(map[string]interface{}{
		"type":         "notification",
		"notification": notification,
	})
	if err != nil {
		zap.S().Warnw("failed to push notification, dropping connection",
			"email", email,
			"error", err,
		)
		h.mu.Lock()
		if h.clients[email] == conn {
			delete(h.clients, email)
		}
		h.mu.Unlock()
		conn.Close()
		return false
	}
	return true
}

// ChatHub tags live connections with the team chat they joined. A connection
// with an empty tag has connected but not yet joined a team.
type ChatHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]string
}

// NewChatHub creates an empty chat registry
func NewChatHub() *ChatHub {
	return &ChatHub{conns: make(map[*websocket.Conn]string)}
}

// Add tracks a new connection in the Connected(no team) state
func (h *ChatHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = ""
	h.mu.Unlock()
}

// Join tags a connection with the team it joined
func (h *ChatHub) Join(conn *websocket.Conn, teamName string) {
	h.mu.Lock()
	h.conns[conn] = teamName
	h.mu.Unlock()
	zap.S().Debugf("client joined team chat: %s", teamName)
}

// TeamOf returns the team a connection has joined, empty if none
func (h *ChatHub) TeamOf(conn *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[conn]
}

// Remove drops a closed connection from the registry
func (h *ChatHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Broadcast delivers a message frame to every connection tagged with the
// team, returning the delivered count. Failed writers are dropped.
func (h *ChatHub) Broadcast(teamName string, message models.ChatMessage) int {
	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for conn, team := range h.conns {
		if team == teamName {
			targets = append(targets, conn)
		}
	}
	h.mu.Unlock()

	delivered := 0
	for _, conn := range targets {
		err := conn.WriteJSON(map[string]interface{}{
			"type":      "message",
			"sender":    message.Sender,
			"text":      message.Text,
			"timestamp": message.Timestamp,
		})
		if err != nil {
			zap.S().Warnw("chat broadcast write failed", "team", teamName, "error", err)
			h.Remove(conn)
			conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// Realtime exported for testing purposes
type Realtime struct {
	NotificationHub *NotificationHub
	ChatHub         *ChatHub
	MDB             databases.ChatMessageDatabase
}

// NotificationsWebSocketHandler accepts notification connections and waits
// for the register frame
func (rt Realtime) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}
	zap.S().Debug("new notification websocket client connected")

	defer func() {
		rt.NotificationHub.Unregister(conn)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// malformed frames are dropped, never fatal
			zap.S().Warnw("malformed notification frame", "error", err)
			continue
		}

		if frame.Type == "register" && frame.UserEmail != "" {
			rt.NotificationHub.Register(frame.UserEmail, conn)
		}
	}
}

// ChatWebSocketHandler accepts chat connections, relays join/message frames
// and persists every broadcast message
func (rt Realtime) ChatWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}
	zap.S().Debug("new chat websocket client connected")

	rt.ChatHub.Add(conn)
	defer func() {
		rt.ChatHub.Remove(conn)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			zap.S().Warnw("malformed chat frame", "error", err)
			continue
		}

		switch frame.Type {
		case "join":
			rt.ChatHub.Join(conn, frame.TeamName)
		case "message":
			teamName := rt.ChatHub.TeamOf(conn)
			if teamName == "" {
				// no team to attribute the message to yet
				continue
			}
			rt.relayMessage(teamName, frame)
		}
	}
}

func (rt Realtime) relayMessage(teamName string, frame wsFrame) {
	message := models.ChatMessage{
		TeamName:  teamName,
		Sender:    frame.Sender,
		Text:      frame.Text,
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := rt.MDB.InsertOne(ctx, message); err != nil {
		zap.S().Errorw("failed to save chat message", "team", teamName, "error", err)
		return
	}

	rt.ChatHub.Broadcast(teamName, message)
}
