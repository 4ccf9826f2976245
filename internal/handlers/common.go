package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// DataResponse wraps every successful payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	middleware.RespondError(w, message, statusCode)
}

// pathParam returns the decoded route parameter. chi matches on RawPath when
// the client escaped more than needed, so values like alice%40x.io arrive
// still encoded.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		respondError(w, "Invalid "+name, http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// respondJSON sends data wrapped in a DataResponse
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Store failures are logged with their cause and answered with fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback, userID string) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrConflict):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg(fallback)
		respondError(w, fallback, http.StatusInternalServerError)
	}
}
