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

// SessionExpiryWorker flips active sessions to expired at expiresAt. Rows are kept.
type SessionExpiryWorker struct {
	sessions repositories.SessionRepository
	sched    *scheduler.Scheduler
}

func NewSessionExpiryWorker(sessions repositories.SessionRepository, sched *scheduler.Scheduler) *SessionExpiryWorker {
	return &SessionExpiryWorker{sessions: sessions, sched: sched}
}

// Schedule arms the expiry job for an active session with a future expiresAt.
// Any other session only has its pending job dropped.
func (w *SessionExpiryWorker) Schedule(session *models.Session) bool {
	if session.Status != models.SessionStatusActive {
		w.sched.Cancel(session.ID)
		logger.JobLog(w.sched.Name(), "not_scheduled", session.ID, nil)
		return false
	}
	return w.sched.Schedule(session.ID, session.ExpiresAt, w.job(session.ID))
}

func (w *SessionExpiryWorker) Cancel(id string) {
	w.sched.Cancel(id)
}

func (w *SessionExpiryWorker) Pending() int {
	return w.sched.Pending()
}

func (w *SessionExpiryWorker) Has(id string) bool {
	return w.sched.Has(id)
}

func (w *SessionExpiryWorker) job(id string) scheduler.JobFunc {
	return func(ctx context.Context) error {
		session, err := w.sessions.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrSessionNotFound) {
			logger.JobLog(w.sched.Name(), "skipped_missing", id, nil)
			return nil
		}
		if err != nil {
			return err
		}
		if session.Status != models.SessionStatusActive {
			logger.JobLog(w.sched.Name(), "skipped_status", id, nil)
			return nil
		}
		if session.ExpiresAt.After(w.sched.Now()) {
			w.Schedule(session)
			return nil
		}
		_, err = w.sessions.ExpireIfActive(ctx, id)
		return err
	}
}

// Restore rebuilds the schedule from the store and expires sessions that lapsed while down.
func (w *SessionExpiryWorker) Restore(ctx context.Context) (RestoreReport, error) {
	report := RestoreReport{Cancelled: w.sched.CancelAll()}
	now := w.sched.Now()

	active, err := w.sessions.ListActive(ctx)
	if err != nil {
		return report, err
	}
	future, due := partition(active, now, func(s models.Session) time.Time { return s.ExpiresAt })
	for i := range future {
		if w.Schedule(&future[i]) {
			report.Scheduled++
		}
	}
	out := resolveEach(ctx, w.sched.Name(), due, sessionID, w.sessions.ExpireIfActive)
	report.add(out)
	logger.WorkerLog(w.sched.Name(), "restore", out.err, "scheduled", report.Scheduled, "resolved", report.Resolved, "failed", report.Failed)
	return report, out.err
}

// ResolveOverdue expires active sessions already past expiresAt, e.g. after a missed timer.
func (w *SessionExpiryWorker) ResolveOverdue(ctx context.Context) (int, error) {
	now := w.sched.Now()
	active, err := w.sessions.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	_, due := partition(active, now, func(s models.Session) time.Time { return s.ExpiresAt })
	for _, s := range due {
		w.sched.Cancel(s.ID)
	}
	out := resolveEach(ctx, w.sched.Name(), due, sessionID, w.sessions.ExpireIfActive)
	return out.resolved, out.err
}

func sessionID(s models.Session) string { return s.ID }
