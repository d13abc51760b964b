package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.Create(ctx, "sid-1", "member-1", time.Now().Add(time.Hour)))

	ok, err := store.Active(ctx, "sid-1", "member-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Active(ctx, "sid-1", "member-2")
	require.NoError(t, err)
	assert.False(t, ok, "session bound to another member")

	require.NoError(t, store.Revoke(ctx, "sid-1"))
	ok, err = store.Active(ctx, "sid-1", "member-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Revoke(ctx, "sid-1"), "revoking twice is a no-op")
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	require.NoError(t, store.Create(ctx, "sid-1", "member-1", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	ok, err := store.Active(ctx, "sid-1", "member-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, store.Create(ctx, "sid-2", "member-1", time.Now().Add(-time.Second)))
}

func TestRedisStore_RevokeAll(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Create(ctx, "a", "member-1", exp))
	require.NoError(t, store.Create(ctx, "b", "member-1", exp))
	require.NoError(t, store.Create(ctx, "c", "member-2", exp))

	require.NoError(t, store.RevokeAll(ctx, "member-1"))

	for _, sid := range []string{"a", "b"} {
		ok, err := store.Active(ctx, sid, "member-1")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := store.Active(ctx, "c", "member-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Connect(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
