package workers

import (
	"context"
	"fmt"
	"sync"

	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/scheduler"

	"golang.org/x/sync/errgroup"
)

// Registry owns the lifecycle workers and their schedulers.
type Registry struct {
	Sessions      *SessionExpiryWorker
	Otps          *OtpCleanupWorker
	Invoices      *InvoiceCleanupWorker
	Subscriptions *SubscriptionWorker

	schedulers []*scheduler.Scheduler
}

// NewRegistry builds one scheduler per entity kind on the given clock.
func NewRegistry(repos *repositories.Repositories, opts scheduler.Options) *Registry {
	sessions := scheduler.New("session_expiry", opts)
	otps := scheduler.New("otp_cleanup", opts)
	invoices := scheduler.New("invoice_cleanup", opts)
	subscriptions := scheduler.New("subscription_expiry", opts)
	reset := scheduler.New("query_reset", opts)

	return &Registry{
		Sessions:      NewSessionExpiryWorker(repos.Sessions, sessions),
		Otps:          NewOtpCleanupWorker(repos.Otps, otps),
		Invoices:      NewInvoiceCleanupWorker(repos.Invoices, invoices),
		Subscriptions: NewSubscriptionWorker(repos.Users, subscriptions, reset),
		schedulers:    []*scheduler.Scheduler{sessions, otps, invoices, subscriptions, reset},
	}
}

type restorer interface {
	Restore(ctx context.Context) (RestoreReport, error)
	ResolveOverdue(ctx context.Context) (int, error)
}

func (r *Registry) workers() map[string]restorer {
	return map[string]restorer{
		"session_expiry":      r.Sessions,
		"otp_cleanup":         r.Otps,
		"invoice_cleanup":     r.Invoices,
		"subscription_expiry": r.Subscriptions,
	}
}

// RestoreAll recovers every worker concurrently. Workers are independent, so one
// failing does not stop the others from finishing.
func (r *Registry) RestoreAll(ctx context.Context) (map[string]RestoreReport, error) {
	workers := r.workers()
	reports := make(map[string]RestoreReport, len(workers))
	var mu sync.Mutex

	var g errgroup.Group
	for name, w := range workers {
		name, w := name, w
		g.Go(func() error {
			report, err := w.Restore(ctx)
			mu.Lock()
			reports[name] = report
			mu.Unlock()
			if err != nil {
				logger.WorkerLog(name, "restore", err)
				return fmt.Errorf("%s restore: %w", name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return reports, err
}

// ResolveOverdue runs every worker's overdue pass and returns the total resolved.
func (r *Registry) ResolveOverdue(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for name, w := range r.workers() {
		n, err := w.ResolveOverdue(ctx)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return total, fmt.Errorf("resolve overdue: %v", errs)
	}
	return total, nil
}

// Shutdown stops every scheduler and waits for running jobs.
func (r *Registry) Shutdown() {
	for _, s := range r.schedulers {
		s.Shutdown()
	}
}
