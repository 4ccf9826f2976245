package handlers

import (
	"net/http"

	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SecretHandler handles secret message HTTP requests
type SecretHandler struct {
	secretService *services.SecretService
}

// NewSecretHandler creates a new secret handler
func NewSecretHandler(secretService *services.SecretService) *SecretHandler {
	return &SecretHandler{
		secretService: secretService,
	}
}

// SecretRequest represents the request body for creating or updating a secret
type SecretRequest struct {
	Content string `json:"content"`
}

// CreateSecret handles POST /secret
func (h *SecretHandler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SecretRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	secret, err := h.secretService.CreateSecret(ctx, userID, req.Content)
	if err != nil {
		respondServiceError(w, err, "Failed to create secret", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("secret_id", secret.ID).
		Msg("Secret created")

	respondJSON(w, secret, http.StatusCreated)
}

// ListSecrets handles GET /secret-message
func (h *SecretHandler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	secrets, err := h.secretService.ListSecrets(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list secrets", userID)
		return
	}

	respondJSON(w, secrets, http.StatusOK)
}

// UpdateSecret handles PUT /secret/{id}
func (h *SecretHandler) UpdateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	secretID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var req SecretRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	secret, err := h.secretService.UpdateSecret(ctx, secretID, req.Content, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to update secret", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("secret_id", secret.ID).
		Msg("Secret updated")

	respondJSON(w, secret, http.StatusOK)
}

// DeleteSecret handles DELETE /secret/{id}
func (h *SecretHandler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	secretID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	secret, err := h.secretService.DeleteSecret(ctx, secretID, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to delete secret", userID)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("secret_id", secret.ID).
		Msg("Secret deleted")

	respondJSON(w, secret, http.StatusOK)
}
