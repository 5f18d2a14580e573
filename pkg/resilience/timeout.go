package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that an operation ran past its limit. It unwraps to
// context.DeadlineExceeded.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: exceeded %v", e.Op, e.Limit)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// WithTimeout runs fn under a deadline of timeout derived from ctx. fn must
// honour its context. When the deadline, rather than ctx, ended the call the
// result is a *TimeoutError. A timeout of zero or less runs fn unbounded.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	limit := &TimeoutError{Op: name, Limit: timeout}
	bounded, cancel := context.WithTimeoutCause(ctx, timeout, limit)
	defer cancel()

	err := fn(bounded)
	if err != nil && ctx.Err() == nil && errors.Is(context.Cause(bounded), limit) {
		return limit
	}
	return err
}
