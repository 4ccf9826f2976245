package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secret-friends-backend/internal/auth"
	"secret-friends-backend/internal/repository/memstore"
	"secret-friends-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T) (http.Handler, *services.WSHub) {
	t.Helper()
	store := memstore.New()
	hub := services.NewWSHub()
	router := NewRouter(Dependencies{
		Authenticator:  auth.NewHeaderAuthenticator(""),
		IdentityHeader: auth.DefaultHeader,
		Store:          store,
		UserService:    services.NewUserService(store.Users()),
		SecretService:  services.NewSecretService(store.Secrets()),
		FriendService:  services.NewFriendService(store.FriendRequests()),
		AccessService:  services.NewAccessService(store.FriendRequests(), store.Secrets()),
		WSHub:          hub,
	})
	return router, hub
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, userID string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.DefaultHeader, userID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func register(t *testing.T, h http.Handler, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		code, _ := do(t, h, "POST", "/users", id, map[string]string{"email": id + "@example.com"})
		require.Equal(t, http.StatusCreated, code)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	code, _ := do(t, h, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)

	down := NewRouter(Dependencies{Authenticator: auth.NewHeaderAuthenticator(""), Store: failingPinger{}, WSHub: services.NewWSHub()})
	code, resp := do(t, down, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "store unavailable", resp.Error)
}

func TestMissingIdentity(t *testing.T) {
	h, _ := newTestRouter(t)

	code, resp := do(t, h, "GET", "/secret-message", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", resp.Error)
}

func TestUsers(t *testing.T) {
	h, _ := newTestRouter(t)

	code, _ := do(t, h, "POST", "/users", "alice", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusCreated, code)

	code, resp := do(t, h, "POST", "/users", "alice", map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusOK, code)
	user := decodeData[map[string]interface{}](t, resp)
	assert.Equal(t, "alice@example.com", user["email"])

	code, _ = do(t, h, "POST", "/users", "bob", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, "GET", "/users/me", "alice", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "DELETE", "/users/alice", "bob", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, "DELETE", "/users/alice", "alice", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "DELETE", "/users/alice", "alice", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvalidBody(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/secret", strings.NewReader("{not json"))
	req.Header.Set(auth.DefaultHeader, "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestSecrets(t *testing.T) {
	h, _ := newTestRouter(t)
	register(t, h, "alice", "bob")

	code, _ := do(t, h, "POST", "/secret", "alice", map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := do(t, h, "POST", "/secret", "alice", map[string]string{"content": " hello "})
	require.Equal(t, http.StatusCreated, code)
	created := decodeData[map[string]interface{}](t, resp)
	assert.Equal(t, "hello", created["content"])
	secretID := created["id"].(string)

	code, _ = do(t, h, "PUT", "/secret/"+secretID, "bob", map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, "PUT", "/secret/"+secretID, "alice", map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, "PUT", "/secret/"+secretID, "alice", map[string]string{"content": "updated"})
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, "GET", "/secret-message", "alice", nil)
	require.Equal(t, http.StatusOK, code)
	secrets := decodeData[[]map[string]interface{}](t, resp)
	require.Len(t, secrets, 1)
	assert.Equal(t, "updated", secrets[0]["content"])

	code, resp = do(t, h, "GET", "/secret-message", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]map[string]interface{}](t, resp))

	code, _ = do(t, h, "DELETE", "/secret/"+secretID, "alice", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestFriendFlow(t *testing.T) {
	h, _ := newTestRouter(t)
	register(t, h, "alice", "bob", "carol")

	code, _ := do(t, h, "POST", "/secret", "alice", map[string]string{"content": "alice's secret"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = do(t, h, "POST", "/add-friend", "alice", map[string]string{"receiver_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := do(t, h, "POST", "/add-friend", "alice", map[string]string{"receiver_id": "bob"})
	require.Equal(t, http.StatusOK, code)
	requestID := decodeData[map[string]interface{}](t, resp)["id"].(string)

	code, _ = do(t, h, "POST", "/add-friend", "alice", map[string]string{"receiver_id": "bob"})
	assert.Equal(t, http.StatusConflict, code)

	code, resp = do(t, h, "GET", "/friend-requests", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	incoming := decodeData[[]map[string]interface{}](t, resp)
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice@example.com", incoming[0]["sender_email"])

	code, resp = do(t, h, "GET", "/friend-requests/sent", "alice", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, resp), 1)

	code, _ = do(t, h, "GET", "/friends/messages/alice", "bob", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, h, "POST", "/friends/accept", "alice", map[string]string{"requestId": requestID})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, "POST", "/friends/accept", "bob", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, h, "POST", "/friends/accept", "bob", map[string]string{"requestId": requestID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "accepted", decodeData[map[string]interface{}](t, resp)["status"])

	code, resp = do(t, h, "GET", "/friends/messages/alice", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	secrets := decodeData[[]map[string]interface{}](t, resp)
	require.Len(t, secrets, 1)
	assert.Equal(t, "alice's secret", secrets[0]["content"])
	assert.Equal(t, "alice@example.com", secrets[0]["sender_email"])

	code, _ = do(t, h, "GET", "/friends/messages/bob", "alice", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = do(t, h, "GET", "/friends", "alice", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, resp), 1)

	code, _ = do(t, h, "DELETE", "/friends/"+requestID, "carol", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, "DELETE", "/friends/"+requestID, "bob", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "GET", "/friends/messages/alice", "bob", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestEscapedPathIDs(t *testing.T) {
	h, _ := newTestRouter(t)
	register(t, h, "alice@x.io", "bob@x.io")

	code, resp := do(t, h, "POST", "/add-friend", "alice@x.io", map[string]string{"receiver_id": "bob@x.io"})
	require.Equal(t, http.StatusOK, code)
	requestID := decodeData[map[string]interface{}](t, resp)["id"].(string)

	code, _ = do(t, h, "POST", "/friends/accept", "bob@x.io", map[string]string{"requestId": requestID})
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "GET", "/friends/messages/alice%40x.io", "bob@x.io", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "DELETE", "/users/alice%40x.io", "alice@x.io", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, "GET", "/users/me", "alice@x.io", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMalformedPathID(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest("DELETE", "/secret/x", nil)
	req.URL.RawPath = "/secret/%zz"
	req.Header.Set(auth.DefaultHeader, "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid id"}`, rec.Body.String())
}

func TestWebSocketReceivesFriendRequest(t *testing.T) {
	h, hub := newTestRouter(t)
	register(t, h, "alice", "bob")

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set(auth.DefaultHeader, "bob")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypePendingRequests, msg.Type)
	assert.True(t, hub.IsOnline("bob"))

	code, _ := do(t, h, "POST", "/add-friend", "alice", map[string]string{"receiver_id": "bob"})
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypeFriendRequestReceived, msg.Type)

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: services.WSTypePing}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypePong, msg.Type)
}
