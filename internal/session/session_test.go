package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, 24*time.Hour)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return store, mr, cleanup
}

func TestStore_SetGet(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", &Session{UserID: 42}))

	s, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, 24*time.Hour, mr.TTL(sessionKey("tok")))
}

func TestStore_GetMissing(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	s, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, s)
}

func TestStore_GetInvalidJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(sessionKey("tok"), "{not json")

	_, err := store.Get(context.Background(), "tok")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", &Session{}))
	mr.FastForward(25 * time.Hour)

	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_GetSlidesExpiry(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", &Session{}))
	mr.FastForward(20 * time.Hour)

	_, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, mr.TTL(sessionKey("tok")))
}

func TestStore_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", &Session{}))
	require.NoError(t, store.Delete(ctx, "tok"))
	assert.False(t, mr.Exists(sessionKey("tok")))

	// deleting again is fine
	require.NoError(t, store.Delete(ctx, "tok"))
}

func TestStore_RedisDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := store.Get(context.Background(), "tok")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestResolver_IssuesAnonymousSession(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	resolver := NewResolver(store)
	ctx := context.Background()

	identity, token, err := resolver.Resolve(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, domain.Anonymous(token), identity)
	assert.True(t, mr.Exists(sessionKey(token)))

	// the same token resolves to the same identity
	again, sameToken, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, sameToken)
	assert.Equal(t, identity, again)
}

func TestResolver_UnknownTokenIsReplaced(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	resolver := NewResolver(store)

	identity, token, err := resolver.Resolve(context.Background(), "forged-token")
	require.NoError(t, err)
	assert.NotEqual(t, "forged-token", token)
	assert.Equal(t, domain.Anonymous(token), identity)
}

func TestResolver_BindRotatesToken(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	resolver := NewResolver(store)
	ctx := context.Background()

	_, guestToken, err := resolver.Resolve(ctx, "")
	require.NoError(t, err)

	userToken, err := resolver.Bind(ctx, guestToken, 7)
	require.NoError(t, err)
	assert.NotEqual(t, guestToken, userToken)
	assert.False(t, mr.Exists(sessionKey(guestToken)))

	identity, token, err := resolver.Resolve(ctx, userToken)
	require.NoError(t, err)
	assert.Equal(t, userToken, token)
	assert.Equal(t, domain.Authenticated(7), identity)

	_, err = resolver.Bind(ctx, userToken, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolver_Destroy(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	resolver := NewResolver(store)
	ctx := context.Background()

	userToken, err := resolver.Bind(ctx, "", 7)
	require.NoError(t, err)
	require.NoError(t, resolver.Destroy(ctx, userToken))
	require.NoError(t, resolver.Destroy(ctx, ""))

	identity, token, err := resolver.Resolve(ctx, userToken)
	require.NoError(t, err)
	assert.NotEqual(t, userToken, token)
	assert.False(t, identity.IsAuthenticated())
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (*Session, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, *Session) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error          { return f.err }

func TestResolver_StoreErrors(t *testing.T) {
	resolver := NewResolver(failingStore{err: errors.New("redis down")})

	_, _, err := resolver.Resolve(context.Background(), "tok")
	assert.Error(t, err)

	_, _, err = resolver.Resolve(context.Background(), "")
	assert.Error(t, err)
}
