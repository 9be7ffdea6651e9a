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

// OtpCleanupWorker hard-deletes OTP rows a retention period after they expire.
type OtpCleanupWorker struct {
	otps  repositories.OtpRepository
	sched *scheduler.Scheduler
}

func NewOtpCleanupWorker(otps repositories.OtpRepository, sched *scheduler.Scheduler) *OtpCleanupWorker {
	return &OtpCleanupWorker{otps: otps, sched: sched}
}

func (w *OtpCleanupWorker) Schedule(otp *models.Otp) bool {
	return w.sched.Schedule(otp.ID, otp.DeleteAt(), w.job(otp.ID))
}

func (w *OtpCleanupWorker) Cancel(id string) {
	w.sched.Cancel(id)
}

func (w *OtpCleanupWorker) Pending() int {
	return w.sched.Pending()
}

func (w *OtpCleanupWorker) Has(id string) bool {
	return w.sched.Has(id)
}

func (w *OtpCleanupWorker) job(id string) scheduler.JobFunc {
	return func(ctx context.Context) error {
		otp, err := w.otps.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrOtpNotFound) {
			logger.JobLog(w.sched.Name(), "skipped_missing", id, nil)
			return nil
		}
		if err != nil {
			return err
		}
		// A re-send keeps the row id but moves expiry forward.
		if otp.DeleteAt().After(w.sched.Now()) {
			w.Schedule(otp)
			return nil
		}
		_, err = w.otps.DeleteIfExpiredBefore(ctx, id, w.sched.Now().Add(-models.OtpRetention))
		return err
	}
}

// Restore rebuilds the schedule and purges OTPs whose retention ended while down.
func (w *OtpCleanupWorker) Restore(ctx context.Context) (RestoreReport, error) {
	report := RestoreReport{Cancelled: w.sched.CancelAll()}
	now := w.sched.Now()

	otps, err := w.otps.ListAll(ctx)
	if err != nil {
		return report, err
	}
	future, due := partition(otps, now, func(o models.Otp) time.Time { return o.DeleteAt() })
	for i := range future {
		if w.Schedule(&future[i]) {
			report.Scheduled++
		}
	}
	out := resolveEach(ctx, w.sched.Name(), due, otpID, w.deleteExpiredBefore(now))
	report.add(out)
	logger.WorkerLog(w.sched.Name(), "restore", out.err, "scheduled", report.Scheduled, "resolved", report.Resolved, "failed", report.Failed)
	return report, out.err
}

func (w *OtpCleanupWorker) ResolveOverdue(ctx context.Context) (int, error) {
	now := w.sched.Now()
	otps, err := w.otps.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	_, due := partition(otps, now, func(o models.Otp) time.Time { return o.DeleteAt() })
	for _, o := range due {
		w.sched.Cancel(o.ID)
	}
	out := resolveEach(ctx, w.sched.Name(), due, otpID, w.deleteExpiredBefore(now))
	return out.resolved, out.err
}

func (w *OtpCleanupWorker) deleteExpiredBefore(now time.Time) func(context.Context, string) (bool, error) {
	cutoff := now.Add(-models.OtpRetention)
	return func(ctx context.Context, id string) (bool, error) {
		return w.otps.DeleteIfExpiredBefore(ctx, id, cutoff)
	}
}

func otpID(o models.Otp) string { return o.ID }
