package anonquota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store whose every call fails, for the fail-closed policy
type failingStore struct{}

func (f *failingStore) Consume(_ context.Context, _ string, _ int, _ time.Duration) (bool, int, error) {
	return false, 0, errors.New("connection refused")
}

func (f *failingStore) Refund(_ context.Context, _ string, _ int) error {
	return errors.New("connection refused")
}

func (f *failingStore) Remaining(_ context.Context, _ string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestCheckAndConsume_FreshSession(t *testing.T) {
	limiter := NewLimiterWithConfig(NewMemoryStore(), 5, time.Hour)

	result, err := limiter.CheckAndConsume(context.Background(), "session-1")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestCheckAndConsume_ExhaustsAllotment(t *testing.T) {
	limiter := NewLimiterWithConfig(NewMemoryStore(), 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.CheckAndConsume(ctx, "session-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.CheckAndConsume(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestCheckAndConsume_SessionsIsolated(t *testing.T) {
	limiter := NewLimiterWithConfig(NewMemoryStore(), 1, time.Hour)
	ctx := context.Background()

	first, err := limiter.CheckAndConsume(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	// a different session still has its own allotment
	second, err := limiter.CheckAndConsume(ctx, "session-2")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
}

func TestCheckAndConsume_FailClosed(t *testing.T) {
	limiter := NewLimiter(&failingStore{})

	result, err := limiter.CheckAndConsume(context.Background(), "session-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, result.Allowed, "store failure must deny, not allow")
}

func TestRefund_RestoresQuota(t *testing.T) {
	// session with one remaining credit sends a message that fails
	// provider-side; after the refund the credit is back
	limiter := NewLimiterWithConfig(NewMemoryStore(), 1, time.Hour)
	ctx := context.Background()

	result, err := limiter.CheckAndConsume(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)

	require.NoError(t, limiter.Refund(ctx, "session-1", 1))

	remaining, err := limiter.Remaining(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestRefund_ZeroAmountNoop(t *testing.T) {
	limiter := NewLimiter(&failingStore{})

	// zero refunds never touch the store
	assert.NoError(t, limiter.Refund(context.Background(), "session-1", 0))
}

func TestCheckAndConsume_ExpiredSessionReseeds(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiterWithConfig(store, 2, time.Millisecond)
	ctx := context.Background()

	_, err := limiter.CheckAndConsume(ctx, "session-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	// the record expired, so the session starts over at the full allotment
	result, err := limiter.CheckAndConsume(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
}
