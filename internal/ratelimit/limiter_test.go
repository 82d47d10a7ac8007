package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog-auth/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, cfg), mr
}

func TestLimiter_IPWindow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, config.RateLimitConfig{IPLimit: 2, IPWindow: time.Minute})

	for range 2 {
		exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
		require.NoError(t, err)
		assert.False(t, exceeded)
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))
	}

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.True(t, exceeded)

	// other purposes and other clients keep their own budget
	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "sign_up")
	require.NoError(t, err)
	assert.False(t, exceeded)
	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.2", "login")
	require.NoError(t, err)
	assert.False(t, exceeded)

	assert.Equal(t, time.Minute, mr.TTL("ratelimit:ip:login:10.0.0.1"))
	mr.FastForward(time.Minute + time.Second)

	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLimiter_PurposesAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, config.RateLimitConfig{IPLimit: 1, IPWindow: time.Minute})

	require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.True(t, exceeded)

	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "sign_up")
	require.NoError(t, err)
	assert.False(t, exceeded)
	assert.False(t, mr.Exists("ratelimit:ip:sign_up:10.0.0.1"))
}

func TestLimiter_EmailCooldown(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, config.RateLimitConfig{EmailCooldown: 2 * time.Minute})

	onCooldown, err := limiter.CheckEmailCooldown(ctx, "park@email.com")
	require.NoError(t, err)
	assert.False(t, onCooldown)

	require.NoError(t, limiter.SetEmailCooldown(ctx, "Park@Email.com "))

	onCooldown, err = limiter.CheckEmailCooldown(ctx, "park@email.com")
	require.NoError(t, err)
	assert.True(t, onCooldown)

	mr.FastForward(3 * time.Minute)
	onCooldown, err = limiter.CheckEmailCooldown(ctx, "park@email.com")
	require.NoError(t, err)
	assert.False(t, onCooldown)
}
