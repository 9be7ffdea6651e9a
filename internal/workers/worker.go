package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sajilo_backend/internal/logger"
)

// RestoreReport summarises one recovery pass.
type RestoreReport struct {
	Cancelled int // jobs dropped from the previous in-memory state
	Scheduled int // entities whose deadline is still ahead
	Resolved  int // entities resolved synchronously because their deadline passed
	Skipped   int // overdue entities another path resolved first
	Failed    int // overdue entities whose terminal action returned an error
}

// partition splits items by deadline relative to a single now: strictly future, or due.
func partition[T any](items []T, now time.Time, deadline func(T) time.Time) (future, due []T) {
	for _, item := range items {
		if deadline(item).After(now) {
			future = append(future, item)
		} else {
			due = append(due, item)
		}
	}
	return future, due
}

type resolveOutcome struct {
	resolved, skipped, failed int
	err                       error
}

// resolveEach applies a terminal action to every due item. A failing item is logged and
// counted; the rest are still processed and the failures come back joined.
func resolveEach[T any](ctx context.Context, worker string, due []T, id func(T) string, resolve func(context.Context, string) (bool, error)) resolveOutcome {
	var out resolveOutcome
	var errs []error
	for _, item := range due {
		itemID := id(item)
		ok, err := resolve(ctx, itemID)
		switch {
		case err != nil:
			out.failed++
			logger.JobLog(worker, "resolve_failed", itemID, err)
			errs = append(errs, fmt.Errorf("%s: %w", itemID, err))
		case ok:
			out.resolved++
		default:
			out.skipped++
		}
	}
	out.err = errors.Join(errs...)
	return out
}

func (r *RestoreReport) add(out resolveOutcome) {
	r.Resolved += out.resolved
	r.Skipped += out.skipped
	r.Failed += out.failed
}
