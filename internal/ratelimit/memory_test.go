package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllowsUpToMax(t *testing.T) {
	limiter := NewFixedWindow(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "tenant:1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "tenant:2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowResetsAfterWindow(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)

	now := time.Now()
	limiter.now = func() time.Time { return now }

	ctx := context.Background()

	res, err := limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = now.Add(time.Minute + time.Second)

	res, err = limiter.Allow(ctx, "tenant:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestUnlimitedNeverRejects(t *testing.T) {
	limiter := Unlimited()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		res, err := limiter.Allow(ctx, "anything")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}
