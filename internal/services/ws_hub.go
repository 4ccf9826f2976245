package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"secret-friends-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	WSTypeFriendRequestReceived = "friend_request_received"
	WSTypeFriendRequestAccepted = "friend_request_accepted"
	WSTypeFriendRequestDeleted  = "friend_request_deleted"
	WSTypePendingRequests       = "pending_requests"
	WSTypePing                  = "ping"
	WSTypePong                  = "pong"
	WSTypeError                 = "error"
)

const wsWriteTimeout = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// wsClient serializes writes to one connection; gorilla allows a single writer
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.clients[userID]; exists {
		existing.conn.Close()
	}

	h.clients[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[userID]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.clients, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// OnlineCount returns the number of connected users
func (h *WSHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// notify delivers best effort: offline users are skipped silently
func (h *WSHub) notify(userID string, message WSMessage) {
	if !h.IsOnline(userID) {
		return
	}
	if err := h.SendToUser(userID, message); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("type", message.Type).
			Msg("Failed to deliver notification")
	}
}

// NotifyFriendRequestReceived tells the receiver about a new request
func (h *WSHub) NotifyFriendRequestReceived(fr *models.FriendRequest) {
	h.notify(fr.ReceiverID, WSMessage{Type: WSTypeFriendRequestReceived, Data: fr})
}

// NotifyFriendRequestAccepted tells the sender the receiver accepted
func (h *WSHub) NotifyFriendRequestAccepted(fr *models.FriendRequest) {
	h.notify(fr.SenderID, WSMessage{Type: WSTypeFriendRequestAccepted, Data: fr})
}

// NotifyFriendRequestDeleted tells the party that did not delete the request
func (h *WSHub) NotifyFriendRequestDeleted(fr *models.FriendRequest, deletedBy string) {
	otherID := fr.SenderID
	if otherID == deletedBy {
		otherID = fr.ReceiverID
	}
	h.notify(otherID, WSMessage{Type: WSTypeFriendRequestDeleted, Data: fr})
}
