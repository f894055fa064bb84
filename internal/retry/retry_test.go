package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoordinator(t *testing.T) (*Coordinator, *[]time.Duration) {
	t.Helper()
	c := NewCoordinator(DefaultPolicies(3, 5*time.Second, 60*time.Second), slog.New(slog.NewTextHandler(io.Discard, nil)))
	var delays []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	c, delays := testCoordinator(t)

	calls := 0
	err := c.Do(context.Background(), CategoryNetwork, "fetch", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	require.Len(t, *delays, 2)
	assert.Equal(t, 5*time.Second, (*delays)[0])
	assert.Equal(t, 10*time.Second, (*delays)[1], "delays grow monotonically")
}

func TestDoExhaustsAttempts(t *testing.T) {
	c, _ := testCoordinator(t)

	boom := errors.New("still broken")
	calls := 0
	err := c.Do(context.Background(), CategoryBooking, "book", func(ctx context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CategoryBooking, f.Category)
	assert.Equal(t, 3, f.Attempts)
	assert.ErrorIs(t, err, boom)
}

func TestSchedulingIsNeverRetried(t *testing.T) {
	c, delays := testCoordinator(t)

	calls := 0
	err := c.Do(context.Background(), CategoryScheduling, "book", func(ctx context.Context) error {
		calls++
		return errors.New("booking window not open yet")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func asAuth(error) Category { return CategoryAuth }

func TestDoWithFallbackUsedAfterFirstFailure(t *testing.T) {
	c, _ := testCoordinator(t)

	primary := 0
	fallbacks := 0
	err := c.DoWithFallback(context.Background(), "login", asAuth,
		func(ctx context.Context) error {
			primary++
			return errors.New("totp rejected")
		},
		func(ctx context.Context) error {
			fallbacks++
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, primary)
	assert.Equal(t, 1, fallbacks)
}

func TestDoWithFallbackFailingFallbackKeepsRetrying(t *testing.T) {
	c, _ := testCoordinator(t)

	primary := 0
	fallbacks := 0
	err := c.DoWithFallback(context.Background(), "login", asAuth,
		func(ctx context.Context) error {
			primary++
			if primary < 3 {
				return errors.New("totp rejected")
			}
			return nil
		},
		func(ctx context.Context) error {
			fallbacks++
			return errors.New("mailbox unreachable")
		})
	require.NoError(t, err)
	assert.Equal(t, 3, primary)
	assert.Equal(t, 1, fallbacks, "fallback runs only once")
}

func TestDoClassifiedStopsOnNonRetryableCategory(t *testing.T) {
	c, delays := testCoordinator(t)

	calls := 0
	classify := func(err error) Category {
		if calls == 1 {
			return CategoryNetwork
		}
		return CategoryScheduling
	}
	err := c.DoClassified(context.Background(), "reserve", classify, func(ctx context.Context) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls, "network failure retried once, scheduling refusal final")
	assert.Len(t, *delays, 1)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CategoryScheduling, f.Category)
	assert.Equal(t, 2, f.Attempts)
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	c, _ := testCoordinator(t)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	err := c.Do(context.Background(), CategoryNetwork, "fetch", func(ctx context.Context) error {
		calls++
		return errors.New("timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 1, f.Attempts)
}
