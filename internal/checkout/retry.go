package checkout

import (
    "context"
    "time"
)

// RetryPolicy bounds how long an operation will be re-attempted while an
// external system catches up. Attempts are spaced by a fixed Delay, so the
// worst-case wait is Delay * (MaxAttempts - 1). ShouldRetry decides whether
// a given failure is worth another attempt; anything it rejects is returned
// immediately.
type RetryPolicy struct {
    Delay       time.Duration
    MaxAttempts int
    ShouldRetry func(error) bool
}

// Do runs fn up to MaxAttempts times, sleeping Delay between attempts. It
// returns nil on the first success, the last error once attempts are
// exhausted, or ctx.Err() if the context is cancelled during a wait. Errors
// that ShouldRetry rejects short-circuit the loop.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
    attempts := p.MaxAttempts
    if attempts < 1 {
        attempts = 1
    }
    delay := p.Delay
    if delay <= 0 {
        delay = 100 * time.Millisecond
    }

    var err error
    for attempt := 1; ; attempt++ {
        err = fn(ctx)
        if err == nil {
            return nil
        }
        if p.ShouldRetry != nil && !p.ShouldRetry(err) {
            return err
        }
        if attempt >= attempts {
            return err
        }

        timer := time.NewTimer(delay)
        select {
        case <-ctx.Done():
            timer.Stop()
            return ctx.Err()
        case <-timer.C:
        }
    }
}
