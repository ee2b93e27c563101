// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := NewRedis(RedisConfig{Addr: srv.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestRedisRoundTrip(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("GET /campaigns", []byte(`{"items":[]}`), time.Minute)
	got, ok := c.Get("GET /campaigns")
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(got))

	_, ok = c.Get("GET /templates")
	assert.False(t, ok)
}

func TestRedisTTLExpiry(t *testing.T) {
	c, srv := newRedisCache(t)

	c.Set("k", []byte("v"), 30*time.Second)
	srv.FastForward(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok, "entry served past its TTL")
}

func TestRedisDeleteAndClear(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestRedisStats(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisConnectFailure(t *testing.T) {
	_, err := NewRedis(RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	require.Error(t, err)
}
