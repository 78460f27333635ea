package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Call runs op under a bounded timeout and maps failures onto the caller's
// sentinel errors. Every external provider call (embedding, generation) goes
// through here so timeout handling lives in one place instead of being
// scattered across handlers.
//
// A deadline hit on the bounded context is reported as timedOut; if the parent
// context was cancelled the original error is returned untouched so callers
// can distinguish user cancellation from provider slowness.
func Call[T any](ctx context.Context, timeout time.Duration, unavailable, timedOut error, op func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := op(cctx)
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return out, err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w: %v", timedOut, err)
	}
	return out, fmt.Errorf("%w: %v", unavailable, err)
}
