package workers

import (
	"context"
	"errors"
	"time"

	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/scheduler"
)

const monthlyResetJobID = "monthly-query-reset"

// SubscriptionWorker expires paid subscriptions at planEndDate and resets every user's
// query counter at 00:00 on the 1st of each month.
type SubscriptionWorker struct {
	users  repositories.UserRepository
	expiry *scheduler.Scheduler
	reset  *scheduler.Scheduler
}

func NewSubscriptionWorker(users repositories.UserRepository, expiry, reset *scheduler.Scheduler) *SubscriptionWorker {
	return &SubscriptionWorker{users: users, expiry: expiry, reset: reset}
}

// Schedule arms the expiry job of a live paid subscription. Anything else only loses its job.
func (w *SubscriptionWorker) Schedule(user *models.User) bool {
	if !user.Plan.IsPaid() || !user.SubscriptionStatus.IsLive() || user.PlanEndDate == nil {
		w.expiry.Cancel(user.ID)
		return false
	}
	return w.expiry.Schedule(user.ID, *user.PlanEndDate, w.job(user.ID))
}

// HandleSubscriptionUpdate is called after a user's plan fields were persisted. A subscription
// whose end already passed is expired on the spot; a live one gets its expiry job (re)armed.
func (w *SubscriptionWorker) HandleSubscriptionUpdate(ctx context.Context, user *models.User) error {
	if user.SubscriptionLapsed(w.expiry.Now()) {
		w.expiry.Cancel(user.ID)
		if _, err := w.users.ExpireSubscriptionIfLapsed(ctx, user.ID, w.expiry.Now()); err != nil {
			return err
		}
		user.SubscriptionStatus = models.SubscriptionStatusExpired
		logger.JobLog(w.expiry.Name(), "expired_immediately", user.ID, nil)
		return nil
	}
	w.Schedule(user)
	return nil
}

func (w *SubscriptionWorker) Cancel(id string) {
	w.expiry.Cancel(id)
}

func (w *SubscriptionWorker) Pending() int {
	return w.expiry.Pending()
}

func (w *SubscriptionWorker) Has(id string) bool {
	return w.expiry.Has(id)
}

// NextResetAt returns when the armed monthly query reset will run.
func (w *SubscriptionWorker) NextResetAt() (time.Time, bool) {
	return w.reset.Deadline(monthlyResetJobID)
}

func (w *SubscriptionWorker) job(id string) scheduler.JobFunc {
	return func(ctx context.Context) error {
		user, err := w.users.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.JobLog(w.expiry.Name(), "skipped_missing", id, nil)
			return nil
		}
		if err != nil {
			return err
		}
		now := w.expiry.Now()
		if !user.SubscriptionLapsed(now) {
			// Renewed or already expired by another path.
			if user.PlanEndDate != nil && user.PlanEndDate.After(now) {
				w.Schedule(user)
			}
			logger.JobLog(w.expiry.Name(), "skipped_status", id, nil)
			return nil
		}
		_, err = w.users.ExpireSubscriptionIfLapsed(ctx, id, now)
		return err
	}
}

// Restore rebuilds expiry jobs, expires subscriptions that lapsed while down, runs the
// monthly reset when started on the 1st and arms the next one.
func (w *SubscriptionWorker) Restore(ctx context.Context) (RestoreReport, error) {
	report := RestoreReport{Cancelled: w.expiry.CancelAll()}
	w.reset.CancelAll()
	now := w.expiry.Now()

	// The monthly reset is independent of the per-user pass and is armed whatever happens below.
	defer w.armMonthlyReset()

	var errs []error
	users, err := w.users.ListUnexpiredPaid(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	future, due := partition(users, now, func(u models.User) time.Time { return *u.PlanEndDate })
	for i := range future {
		if w.Schedule(&future[i]) {
			report.Scheduled++
		}
	}
	out := resolveEach(ctx, w.expiry.Name(), due, userID, w.expireLapsed(now))
	report.add(out)
	if out.err != nil {
		errs = append(errs, out.err)
	}

	if now.Day() == 1 {
		if err := w.resetQueries(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err = errors.Join(errs...)
	logger.WorkerLog(w.expiry.Name(), "restore", err, "scheduled", report.Scheduled, "resolved", report.Resolved, "failed", report.Failed)
	return report, err
}

func (w *SubscriptionWorker) ResolveOverdue(ctx context.Context) (int, error) {
	now := w.expiry.Now()
	users, err := w.users.ListUnexpiredPaid(ctx)
	if err != nil {
		return 0, err
	}
	_, due := partition(users, now, func(u models.User) time.Time { return *u.PlanEndDate })
	for _, u := range due {
		w.expiry.Cancel(u.ID)
	}
	out := resolveEach(ctx, w.expiry.Name(), due, userID, w.expireLapsed(now))
	return out.resolved, out.err
}

func (w *SubscriptionWorker) expireLapsed(now time.Time) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, id string) (bool, error) {
		return w.users.ExpireSubscriptionIfLapsed(ctx, id, now)
	}
}

func userID(u models.User) string { return u.ID }

func (w *SubscriptionWorker) armMonthlyReset() {
	next := NextMonthStart(w.reset.Now())
	w.reset.Schedule(monthlyResetJobID, next, func(ctx context.Context) error {
		defer w.armMonthlyReset()
		return w.resetQueries(ctx)
	})
}

func (w *SubscriptionWorker) resetQueries(ctx context.Context) error {
	n, err := w.users.ResetUsedQuery(ctx)
	logger.WorkerLog(w.reset.Name(), "reset_used_query", err, "users", n)
	return err
}

// NextMonthStart returns 00:00 on the 1st of the month after t, in t's location.
func NextMonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}
