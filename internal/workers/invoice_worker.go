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

// InvoiceCleanupWorker deletes invoices still pending or failed a retention period after issue.
type InvoiceCleanupWorker struct {
	invoices repositories.InvoiceRepository
	sched    *scheduler.Scheduler
}

func NewInvoiceCleanupWorker(invoices repositories.InvoiceRepository, sched *scheduler.Scheduler) *InvoiceCleanupWorker {
	return &InvoiceCleanupWorker{invoices: invoices, sched: sched}
}

// Schedule arms deletion for an open invoice. Paid and refunded invoices only lose their job.
func (w *InvoiceCleanupWorker) Schedule(invoice *models.Invoice) bool {
	if !invoice.Status.IsOpen() {
		w.sched.Cancel(invoice.ID)
		logger.JobLog(w.sched.Name(), "not_scheduled", invoice.ID, nil)
		return false
	}
	return w.sched.Schedule(invoice.ID, invoice.DeleteAt(), w.job(invoice.ID))
}

func (w *InvoiceCleanupWorker) Cancel(id string) {
	w.sched.Cancel(id)
}

func (w *InvoiceCleanupWorker) Pending() int {
	return w.sched.Pending()
}

func (w *InvoiceCleanupWorker) Has(id string) bool {
	return w.sched.Has(id)
}

func (w *InvoiceCleanupWorker) job(id string) scheduler.JobFunc {
	return func(ctx context.Context) error {
		invoice, err := w.invoices.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrInvoiceNotFound) {
			logger.JobLog(w.sched.Name(), "skipped_missing", id, nil)
			return nil
		}
		if err != nil {
			return err
		}
		if !invoice.Status.IsOpen() {
			logger.JobLog(w.sched.Name(), "skipped_status", id, nil)
			return nil
		}
		if invoice.DeleteAt().After(w.sched.Now()) {
			w.Schedule(invoice)
			return nil
		}
		_, err = w.invoices.DeleteIfOpenIssuedBefore(ctx, id, w.sched.Now().Add(-models.InvoiceRetention))
		return err
	}
}

// Restore rebuilds the schedule and deletes open invoices whose retention ended while down.
func (w *InvoiceCleanupWorker) Restore(ctx context.Context) (RestoreReport, error) {
	report := RestoreReport{Cancelled: w.sched.CancelAll()}
	now := w.sched.Now()

	open, err := w.invoices.ListOpen(ctx)
	if err != nil {
		return report, err
	}
	future, due := partition(open, now, func(i models.Invoice) time.Time { return i.DeleteAt() })
	for i := range future {
		if w.Schedule(&future[i]) {
			report.Scheduled++
		}
	}
	out := resolveEach(ctx, w.sched.Name(), due, invoiceID, w.deleteIssuedBefore(now))
	report.add(out)
	logger.WorkerLog(w.sched.Name(), "restore", out.err, "scheduled", report.Scheduled, "resolved", report.Resolved, "failed", report.Failed)
	return report, out.err
}

func (w *InvoiceCleanupWorker) ResolveOverdue(ctx context.Context) (int, error) {
	now := w.sched.Now()
	open, err := w.invoices.ListOpen(ctx)
	if err != nil {
		return 0, err
	}
	_, due := partition(open, now, func(i models.Invoice) time.Time { return i.DeleteAt() })
	for _, inv := range due {
		w.sched.Cancel(inv.ID)
	}
	out := resolveEach(ctx, w.sched.Name(), due, invoiceID, w.deleteIssuedBefore(now))
	return out.resolved, out.err
}

func (w *InvoiceCleanupWorker) deleteIssuedBefore(now time.Time) func(context.Context, string) (bool, error) {
	cutoff := now.Add(-models.InvoiceRetention)
	return func(ctx context.Context, id string) (bool, error) {
		return w.invoices.DeleteIfOpenIssuedBefore(ctx, id, cutoff)
	}
}

func invoiceID(i models.Invoice) string { return i.ID }
