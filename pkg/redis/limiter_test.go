package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowKey(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)
	a := WindowKey("viewer:1.2.3.4", base, time.Minute)
	b := WindowKey("viewer:1.2.3.4", base.Add(30*time.Second), time.Minute)
	c := WindowKey("viewer:1.2.3.4", base.Add(70*time.Second), time.Minute)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "ratelimit:viewer:1.2.3.4:")
}

func TestLimiter_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	l := NewLimiter(client, 2, time.Minute)
	key := fmt.Sprintf("test:%d", time.Now().UnixNano())

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
