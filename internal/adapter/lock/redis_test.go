package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-relay/internal/adapter/logging"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "", ttl, logging.Nop()), server
}

func TestRedis_ExclusiveUntilReleased(t *testing.T) {
	l, server := newTestRedis(t, time.Minute)
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, server.Exists(DefaultKey))
	assert.Equal(t, time.Minute, server.TTL(DefaultKey))

	_, ok, err = l.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, server.Exists(DefaultKey))

	release2, ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestRedis_StaleReleaseKeepsNewHolder(t *testing.T) {
	l, server := newTestRedis(t, time.Second)
	ctx := context.Background()

	staleRelease, ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	server.FastForward(2 * time.Second)
	require.False(t, server.Exists(DefaultKey))

	release, ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	holder, err := server.Get(DefaultKey)
	require.NoError(t, err)

	staleRelease()

	current, err := server.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, holder, current)
	_, ok, err = l.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, server.Exists(DefaultKey))
}

func TestRedis_BackendErrorReturned(t *testing.T) {
	l, server := newTestRedis(t, time.Minute)
	server.SetError("ERR backend unavailable")

	release, ok, err := l.TryLock(context.Background())

	assert.ErrorContains(t, err, "acquire cycle lock")
	assert.False(t, ok)
	assert.Nil(t, release)
}

func TestRedis_CustomKey(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewRedis(client, "site-a:cycle", time.Minute, logging.Nop())

	release, ok, err := l.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, server.Exists("site-a:cycle"))
	assert.False(t, server.Exists(DefaultKey))
	release()
}
