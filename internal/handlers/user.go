package handlers

import (
	"net/http"

	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUserRequest represents the request body for registering the caller
type CreateUserRequest struct {
	Email string `json:"email"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, created, err := h.userService.CreateUser(ctx, userID, req.Email)
	if err != nil {
		respondServiceError(w, err, "Failed to create user", userID)
		return
	}

	if !created {
		respondJSON(w, user, http.StatusOK)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Msg("User created")

	respondJSON(w, user, http.StatusCreated)
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get user", userID)
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// DeleteUser handles DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.DeleteUser(ctx, userID, targetID)
	if err != nil {
		respondServiceError(w, err, "Failed to delete user", userID)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Msg("User deleted")

	respondJSON(w, user, http.StatusOK)
}
