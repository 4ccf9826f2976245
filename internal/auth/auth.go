// Package auth turns an HTTP request into an authenticated user id.
//
// HeaderAuthenticator trusts a caller-supplied header and is meant for
// deployments behind a gateway that already verified the caller.
// JWTAuthenticator verifies an HS256 bearer token and uses its subject.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// DefaultHeader carries the asserted identity in header mode
const DefaultHeader = "X-User-ID"

var (
	// ErrNoCredentials is returned when the request carries no identity at all
	ErrNoCredentials = errors.New("credentials required")
	// ErrInvalidCredentials is returned when an identity is present but unusable
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator extracts the acting user id from a request
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// HeaderAuthenticator trusts the value of a request header
type HeaderAuthenticator struct {
	header string
}

// NewHeaderAuthenticator creates an authenticator reading header
func NewHeaderAuthenticator(header string) *HeaderAuthenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderAuthenticator{header: header}
}

// Authenticate returns the trimmed header value
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(a.header))
	if userID == "" {
		return "", fmt.Errorf("%s header: %w", a.header, ErrNoCredentials)
	}
	return userID, nil
}

// Claims are the JWT claims issued for a user
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 bearer tokens
type JWTAuthenticator struct {
	secret []byte
	issuer string
}

// NewJWTAuthenticator creates a JWT authenticator
func NewJWTAuthenticator(secret, issuer string) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTAuthenticator{secret: []byte(secret), issuer: issuer}, nil
}

// Authenticate reads a bearer token from the Authorization header, or from
// the token query parameter for websocket upgrades. Browsers cannot set
// headers on a websocket handshake; plain requests never read the query.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	var token string
	if websocket.IsWebSocketUpgrade(r) {
		token = r.URL.Query().Get("token")
	}

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", fmt.Errorf("authorization header format: %w", ErrInvalidCredentials)
		}
		token = parts[1]
	}

	if token == "" {
		return "", fmt.Errorf("bearer token: %w", ErrNoCredentials)
	}
	return a.ValidateToken(token)
}

// GenerateToken signs a token for userID valid for ttl
func (a *JWTAuthenticator) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a token and returns the user id it was issued for
func (a *JWTAuthenticator) ValidateToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !token.Valid {
		return "", ErrInvalidCredentials
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return "", fmt.Errorf("subject not found in token: %w", ErrInvalidCredentials)
	}
	return userID, nil
}
