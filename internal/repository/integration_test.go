package repository

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"secret-friends-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_URL and applies the schema inside a
// throwaway search_path so runs never share rows.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	cfg.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, ApplySchema(ctx, pool))
	// applying twice is harmless
	require.NoError(t, ApplySchema(ctx, pool))
	return pool
}

func createUsers(t *testing.T, users *UserRepository, ids ...string) {
	t.Helper()
	for _, id := range ids {
		created, err := users.Create(context.Background(), &models.User{ID: id, Email: id + "@example.com", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		require.True(t, created)
	}
}

func newRequest(senderID, receiverID string) *models.FriendRequest {
	return &models.FriendRequest{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestPostgres_UserCreateIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	createUsers(t, users, "alice")

	created, err := users.Create(ctx, &models.User{ID: "alice", Email: "other@example.com", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, created)

	user, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = users.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_DeleteUserCascades(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	secrets := NewSecretRepository(pool)
	requests := NewFriendRequestRepository(pool)
	ctx := context.Background()

	createUsers(t, users, "alice", "bob")
	require.NoError(t, secrets.Create(ctx, &models.SecretMessage{ID: uuid.New().String(), OwnerID: "alice", Content: "hi", UpdatedAt: time.Now().UTC()}))
	fr := newRequest("alice", "bob")
	require.NoError(t, requests.Create(ctx, fr))

	deleted, err := users.Delete(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.ID)

	owned, err := secrets.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, owned)

	_, err = requests.GetByID(ctx, fr.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.Delete(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	err = requests.Create(ctx, newRequest("bob", "alice"))
	assert.ErrorIs(t, err, ErrReferenceMissing)
}

func TestPostgres_SecretOwnership(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	secrets := NewSecretRepository(pool)
	ctx := context.Background()

	createUsers(t, users, "alice", "bob")
	ids := []string{uuid.New().String(), uuid.New().String(), uuid.New().String()}
	for i, id := range ids {
		require.NoError(t, secrets.Create(ctx, &models.SecretMessage{ID: id, OwnerID: "alice", Content: "secret " + string(rune('a'+i)), UpdatedAt: time.Now().UTC()}))
	}

	listed, err := secrets.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, s := range listed {
		assert.Equal(t, ids[i], s.ID)
	}

	_, err = secrets.Update(ctx, ids[0], "bob", "stolen", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = secrets.Delete(ctx, ids[0], "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := secrets.Update(ctx, ids[0], "alice", "changed", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)

	// updating keeps insertion order
	listed, err = secrets.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, ids[0], listed[0].ID)

	withEmail, err := secrets.ListByOwnerWithEmail(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, withEmail, 3)
	assert.Equal(t, "alice@example.com", withEmail[0].SenderEmail)
}

func TestPostgres_FriendRequestLifecycle(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	requests := NewFriendRequestRepository(pool)
	ctx := context.Background()

	createUsers(t, users, "alice", "bob", "carol")
	fr := newRequest("alice", "bob")
	require.NoError(t, requests.Create(ctx, fr))

	// the reverse direction is a separate edge
	require.NoError(t, requests.Create(ctx, newRequest("bob", "alice")))

	incoming, err := requests.ListIncomingPending(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice@example.com", incoming[0].SenderEmail)

	_, err = requests.Accept(ctx, fr.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	accepted, err := requests.Accept(ctx, fr.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, accepted.Status)

	friends, err := requests.ListFriends(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, friends, 1)

	_, err = requests.Delete(ctx, fr.ID, "carol")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = requests.Delete(ctx, fr.ID, "bob")
	require.NoError(t, err)
}

func TestPostgres_ConcurrentCreateSamePair(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	requests := NewFriendRequestRepository(pool)
	ctx := context.Background()

	createUsers(t, users, "alice", "bob")

	const workers = 16
	errs := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = requests.Create(ctx, newRequest("alice", "bob"))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	outgoing, err := requests.ListOutgoingPending(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}
