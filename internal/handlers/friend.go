package handlers

import (
	"net/http"

	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// FriendHandler handles friend request and friend visibility HTTP requests
type FriendHandler struct {
	friendService *services.FriendService
	accessService *services.AccessService
	wsHub         *services.WSHub
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService, accessService *services.AccessService, wsHub *services.WSHub) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		accessService: accessService,
		wsHub:         wsHub,
	}
}

// AddFriendRequest represents the request body for POST /add-friend
type AddFriendRequest struct {
	ReceiverID string `json:"receiver_id"`
}

// AcceptFriendRequest represents the request body for POST /friends/accept
type AcceptFriendRequest struct {
	RequestID string `json:"requestId"`
}

// AddFriend handles POST /add-friend
func (h *FriendHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AddFriendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fr, err := h.friendService.SendRequest(ctx, userID, req.ReceiverID)
	if err != nil {
		respondServiceError(w, err, "Failed to send friend request", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("receiver_id", fr.ReceiverID).
		Str("request_id", fr.ID).
		Msg("Friend request sent")

	h.wsHub.NotifyFriendRequestReceived(fr)

	respondJSON(w, fr, http.StatusOK)
}

// ListFriendRequests handles GET /friend-requests
func (h *FriendHandler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.friendService.ListIncomingPending(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list friend requests", userID)
		return
	}

	respondJSON(w, requests, http.StatusOK)
}

// ListSentRequests handles GET /friend-requests/sent
func (h *FriendHandler) ListSentRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.friendService.ListOutgoingPending(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list sent requests", userID)
		return
	}

	respondJSON(w, requests, http.StatusOK)
}

// ListFriends handles GET /friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	friends, err := h.friendService.ListFriends(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list friends", userID)
		return
	}

	respondJSON(w, friends, http.StatusOK)
}

// AcceptRequest handles POST /friends/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AcceptFriendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.RequestID == "" {
		respondError(w, "requestId is required", http.StatusBadRequest)
		return
	}

	fr, err := h.friendService.AcceptRequest(ctx, req.RequestID, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to accept friend request", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", fr.ID).
		Msg("Friend request accepted")

	h.wsHub.NotifyFriendRequestAccepted(fr)

	respondJSON(w, fr, http.StatusOK)
}

// DeleteRequest handles DELETE /friends/{requestId}
func (h *FriendHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID, ok := pathParam(w, r, "requestId")
	if !ok {
		return
	}

	fr, err := h.friendService.DeleteRequest(ctx, requestID, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to delete friend request", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", fr.ID).
		Msg("Friend request deleted")

	h.wsHub.NotifyFriendRequestDeleted(fr, userID)

	respondJSON(w, fr, http.StatusOK)
}

// GetFriendMessages handles GET /friends/messages/{friendId}
func (h *FriendHandler) GetFriendMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	friendID, ok := pathParam(w, r, "friendId")
	if !ok {
		return
	}

	secrets, err := h.accessService.GetFriendSecrets(ctx, userID, friendID)
	if err != nil {
		respondServiceError(w, err, "Failed to get friend messages", userID)
		return
	}

	respondJSON(w, secrets, http.StatusOK)
}
