package internal

import (
	"context"
	"fmt"
	"time"
)

// Default polling parameters for slow analysis endpoints
const (
	DefaultPollAttempts = 5
	DefaultPollInterval = 3 * time.Second
)

// Sleeper waits between poll attempts
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on a real timer and stops early when ctx is done
type TimerSleeper struct{}

// Sleep blocks for d or until ctx is cancelled
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollOptions configures PollUntilReady
type PollOptions[T any] struct {
	Op          string // name used in errors and the terminal notification
	MaxAttempts int
	Interval    time.Duration

	// IsEmpty reports a 200 answer that carries no result yet. Nil means
	// every successful answer counts as ready.
	IsEmpty func(T) bool

	Sleeper  Sleeper
	Notifier Notifier

	// OnAttempt is called after every attempt with its 1-based number and
	// the error that made it fail (nil on success)
	OnAttempt func(attempt int, err error)
}

// PollUntilReady calls fn until it returns a non-empty result, waiting a fixed
// interval between attempts, for at most MaxAttempts attempts. A successful
// attempt returns immediately. Only errors accepted by IsRetryable are tried
// again; any other error ends the poll at once. Exhaustion returns a
// *PollExhaustedError. Both failures emit exactly one error notification;
// cancellation of ctx returns ctx.Err() without notifying.
func PollUntilReady[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts PollOptions[T]) (T, error) {
	var zero T

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil && opts.IsEmpty != nil && opts.IsEmpty(result) {
			err = &NotReadyError{Op: opts.Op}
		}
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt, err)
		}
		if err == nil {
			return result, nil
		}

		// ctx cancelled while the call was in flight
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		if !IsRetryable(err) {
			failed := fmt.Errorf("%s failed: %w", opts.Op, err)
			notify(opts.Notifier, opts.Op, failed)
			return zero, failed
		}

		last = err
		LogDebug("%s attempt %d/%d not ready: %v", opts.Op, attempt, attempts, err)

		if attempt == attempts {
			break
		}
		if err := sleeper.Sleep(ctx, opts.Interval); err != nil {
			return zero, err
		}
	}

	exhausted := &PollExhaustedError{Op: opts.Op, Attempts: attempts, Last: last}
	notify(opts.Notifier, opts.Op, exhausted)
	return zero, exhausted
}

func notify(n Notifier, op string, err error) {
	if n == nil {
		return
	}
	n.Notify(Notification{
		Level:   LevelError,
		Title:   fmt.Sprintf("%s unavailable", op),
		Message: err.Error(),
	})
}
