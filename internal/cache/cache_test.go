package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoOp(t *testing.T) {
	ctx := context.Background()
	c := NewWithClient(nil)
	assert.False(t, c.Enabled())

	var dest map[string]int
	found, err := c.GetJSON(ctx, "anything", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.SetJSON(ctx, "anything", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, c.Invalidate(ctx, "anything"))
	assert.NoError(t, c.InvalidatePrefix(ctx, FeedKey))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	found, err := c.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewWithoutURLDisables(t *testing.T) {
	c := New(context.Background(), "")
	assert.False(t, c.Enabled())

	c = New(context.Background(), "not a url")
	assert.False(t, c.Enabled())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "leaderboard:50:100", LeaderboardPageKey(50, 100))
	assert.Equal(t, "feed:10", FeedLimitKey(10))
}

// Requires a local Redis; skipped otherwise.
func TestRoundTripWithRedis(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	c := NewWithClient(rdb)
	defer c.Close()

	key := FeedLimitKey(7)
	require.NoError(t, c.SetJSON(ctx, key, []string{"a", "b"}, time.Minute))

	var got []string
	found, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, c.InvalidatePrefix(ctx, FeedKey))
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}
