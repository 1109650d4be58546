package db

import (
	"context"
	"errors"
	"time"

	"menuwise/internal/apperror"
)

const (
	DefaultWriteAttempts = 5
	retryBackoff         = 5 * time.Millisecond
)

// RetryOptimistic runs a read-modify-write sequence until it commits
// without a version conflict. fn must reload the entity on every call.
// After the last failed attempt the caller gets an apperror.Conflict for
// the named resource.
func RetryOptimistic(ctx context.Context, resource, id string, fn func(ctx context.Context) error) error {
	for attempt := 0; attempt < DefaultWriteAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if !errors.Is(err, apperror.ErrStale) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
	return apperror.Conflict(resource, id)
}
