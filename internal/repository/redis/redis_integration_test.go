package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis integration test")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLockerIntegration(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	locks := NewLocker(client)

	release, err := locks.Acquire(ctx, "test-match", time.Minute)
	require.NoError(t, err)

	_, err = locks.Acquire(ctx, "test-match", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	require.NoError(t, release(ctx))

	release, err = locks.Acquire(ctx, "test-match", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestSessionStoreIntegration(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	sessions := NewSessionStore(client)

	require.NoError(t, sessions.Save(ctx, "hash", "user", time.Minute))
	ok, err := sessions.Exists(ctx, "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, sessions.Delete(ctx, "hash"))
	ok, err = sessions.Exists(ctx, "hash")
	require.NoError(t, err)
	assert.False(t, ok)
}
