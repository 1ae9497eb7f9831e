package checkout

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestRetryPolicyFirstSuccess(t *testing.T) {
    calls := 0
    p := RetryPolicy{Delay: time.Millisecond, MaxAttempts: 5}
    err := p.Do(context.Background(), func(context.Context) error {
        calls++
        return nil
    })
    require.NoError(t, err)
    assert.Equal(t, 1, calls)
}

func TestRetryPolicyExhaustsBudget(t *testing.T) {
    sentinel := errors.New("not yet")
    calls := 0
    p := RetryPolicy{
        Delay:       time.Millisecond,
        MaxAttempts: 4,
        ShouldRetry: func(err error) bool { return errors.Is(err, sentinel) },
    }
    start := time.Now()
    err := p.Do(context.Background(), func(context.Context) error {
        calls++
        return sentinel
    })
    require.ErrorIs(t, err, sentinel)
    assert.Equal(t, 4, calls)
    // Three sleeps of one millisecond between four attempts.
    assert.GreaterOrEqual(t, time.Since(start), 3*time.Millisecond)
}

func TestRetryPolicySucceedsMidway(t *testing.T) {
    sentinel := errors.New("not yet")
    calls := 0
    p := RetryPolicy{
        Delay:       time.Millisecond,
        MaxAttempts: 10,
        ShouldRetry: func(err error) bool { return errors.Is(err, sentinel) },
    }
    err := p.Do(context.Background(), func(context.Context) error {
        calls++
        if calls < 3 {
            return sentinel
        }
        return nil
    })
    require.NoError(t, err)
    assert.Equal(t, 3, calls)
}

func TestRetryPolicyNonRetryableShortCircuits(t *testing.T) {
    retryable := errors.New("not yet")
    fatal := errors.New("boom")
    calls := 0
    p := RetryPolicy{
        Delay:       time.Millisecond,
        MaxAttempts: 10,
        ShouldRetry: func(err error) bool { return errors.Is(err, retryable) },
    }
    err := p.Do(context.Background(), func(context.Context) error {
        calls++
        return fatal
    })
    require.ErrorIs(t, err, fatal)
    assert.Equal(t, 1, calls)
}

func TestRetryPolicyContextCancelDuringWait(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    sentinel := errors.New("not yet")
    p := RetryPolicy{Delay: time.Hour, MaxAttempts: 2}
    go func() {
        time.Sleep(10 * time.Millisecond)
        cancel()
    }()
    err := p.Do(ctx, func(context.Context) error { return sentinel })
    require.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicyZeroValuesGetFloors(t *testing.T) {
    // MaxAttempts < 1 still runs the function once.
    calls := 0
    p := RetryPolicy{}
    err := p.Do(context.Background(), func(context.Context) error {
        calls++
        return errors.New("boom")
    })
    require.Error(t, err)
    assert.Equal(t, 1, calls)
}
