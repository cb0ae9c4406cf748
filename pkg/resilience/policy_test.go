package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRetriesThenSucceeds(t *testing.T) {
	var waits []int
	p := Policy{
		MaxRetries: 2,
		Backoff: func(attempt int) time.Duration {
			waits = append(waits, attempt)
			return time.Millisecond
		},
	}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, waits)
}

func TestPolicyStopsAfterMaxRetries(t *testing.T) {
	p := Policy{MaxRetries: 1, Backoff: LinearBackoff(time.Millisecond)}
	boom := errors.New("upstream down")

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPolicyPermanentErrorIsNotRetried(t *testing.T) {
	p := Policy{MaxRetries: 5, Backoff: LinearBackoff(time.Millisecond)}
	notFound := errors.New("no such place")

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(notFound)
	})

	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Permanent(nil))
}

func TestPolicyAppliesPerAttemptTimeout(t *testing.T) {
	p := Policy{Timeout: 20 * time.Millisecond, MaxRetries: 1, Backoff: LinearBackoff(time.Millisecond)}

	calls := 0
	start := time.Now()
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPolicyHonoursParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Policy{MaxRetries: 3}.Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestLinearBackoff(t *testing.T) {
	b := LinearBackoff(400 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, b(1))
	assert.Equal(t, 800*time.Millisecond, b(2))
}
