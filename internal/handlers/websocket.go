package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub           *services.WSHub
	friendService *services.FriendService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, friendService *services.FriendService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		friendService: friendService,
	}
}

// HandleWebSocket handles GET /ws. The route sits behind AuthMiddleware.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	// the request context is gone once the handler hijacked the connection
	ctx := context.WithoutCancel(r.Context())
	h.sendPendingRequests(ctx, userID)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendErrorToUser(userID, "Invalid message format")
			continue
		}

		h.handleMessage(ctx, userID, msg)
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg services.WSMessage) {
	switch msg.Type {
	case services.WSTypePing:
		if err := h.hub.SendToUser(userID, services.WSMessage{Type: services.WSTypePong}); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pong")
		}
	case services.WSTypePendingRequests:
		h.sendPendingRequests(ctx, userID)
	default:
		h.sendErrorToUser(userID, "Unknown message type")
	}
}

// sendPendingRequests pushes the caller's incoming pending requests
func (h *WebSocketHandler) sendPendingRequests(ctx context.Context, userID string) {
	requests, err := h.friendService.ListIncomingPending(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load pending requests")
		h.sendErrorToUser(userID, "Failed to load pending requests")
		return
	}

	msg := services.WSMessage{Type: services.WSTypePendingRequests, Data: requests}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pending requests")
	}
}

// sendErrorToUser sends an error message to a user
func (h *WebSocketHandler) sendErrorToUser(userID, message string) {
	msg := services.WSMessage{
		Type:    services.WSTypeError,
		Message: message,
	}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
