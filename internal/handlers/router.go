package handlers

import (
	"net/http"

	"secret-friends-backend/internal/auth"
	"secret-friends-backend/internal/middleware"
	"secret-friends-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Dependencies is everything the router mounts
type Dependencies struct {
	Authenticator  auth.Authenticator
	IdentityHeader string
	Store          Pinger
	UserService    *services.UserService
	SecretService  *services.SecretService
	FriendService  *services.FriendService
	AccessService  *services.AccessService
	WSHub          *services.WSHub
}

// NewRouter builds the HTTP routes
func NewRouter(deps Dependencies) http.Handler {
	userHandler := NewUserHandler(deps.UserService)
	secretHandler := NewSecretHandler(deps.SecretService)
	friendHandler := NewFriendHandler(deps.FriendService, deps.AccessService, deps.WSHub)
	wsHandler := NewWebSocketHandler(deps.WSHub, deps.FriendService)
	healthHandler := NewHealthHandler(deps.Store)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(deps.IdentityHeader))

	// Public routes
	r.Get("/healthz", healthHandler.Health)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(deps.Authenticator))

		r.Post("/users", userHandler.CreateUser)
		r.Get("/users/me", userHandler.GetMe)
		r.Delete("/users/{id}", userHandler.DeleteUser)

		r.Post("/secret", secretHandler.CreateSecret)
		r.Get("/secret-message", secretHandler.ListSecrets)
		r.Put("/secret/{id}", secretHandler.UpdateSecret)
		r.Delete("/secret/{id}", secretHandler.DeleteSecret)

		r.Post("/add-friend", friendHandler.AddFriend)
		r.Get("/friend-requests", friendHandler.ListFriendRequests)
		r.Get("/friend-requests/sent", friendHandler.ListSentRequests)
		r.Get("/friends", friendHandler.ListFriends)
		r.Post("/friends/accept", friendHandler.AcceptRequest)
		r.Delete("/friends/{requestId}", friendHandler.DeleteRequest)
		r.Get("/friends/messages/{friendId}", friendHandler.GetFriendMessages)

		r.Get("/ws", wsHandler.HandleWebSocket)
	})

	return r
}
