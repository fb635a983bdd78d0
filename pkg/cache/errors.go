package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable marks a remote backend that did not answer its ping.
	// Callers fall back to [NullCache] when they see it.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by [Open] for a backend name it does not
	// recognise.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// RetryableError marks a connection failure that is worth another attempt.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Dial attempts and the first pause between them. The pause doubles after
// each failed attempt.
const dialAttempts = 3

var retryDelay = time.Second

// RetryWithBackoff runs fn until it succeeds, returns an unmarked error, or
// dialAttempts runs have failed. The last error is returned.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == dialAttempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
