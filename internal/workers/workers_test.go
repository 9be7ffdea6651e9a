package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/repositories/memory"
	"sajilo_backend/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	ctx      context.Context
	clock    *scheduler.FakeClock
	store    *memory.Store
	repos    *repositories.Repositories
	registry *Registry
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	clock := scheduler.NewFakeClock(now)
	store := memory.New(clock.Now)
	repos := store.Repositories()
	registry := NewRegistry(repos, scheduler.Options{
		Clock:   clock,
		Metrics: scheduler.MustNewMetrics(prometheus.NewRegistry()),
	})
	t.Cleanup(registry.Shutdown)
	return &harness{ctx: context.Background(), clock: clock, store: store, repos: repos, registry: registry}
}

var may14 = time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC)

func (h *harness) session(t *testing.T, expiresIn time.Duration, status models.SessionStatus) *models.Session {
	t.Helper()
	s := &models.Session{
		UserID:       "user-1",
		IPAddress:    "10.0.0.1",
		UserAgent:    "Windows 10 | Chrome 120",
		RefreshToken: time.Now().String() + string(status) + expiresIn.String(),
		Status:       status,
		ExpiresAt:    h.clock.Now().Add(expiresIn),
	}
	require.NoError(t, h.repos.Sessions.Create(h.ctx, s))
	return s
}

func (h *harness) sessionStatus(t *testing.T, id string) models.SessionStatus {
	t.Helper()
	s, err := h.repos.Sessions.FindByID(h.ctx, id)
	require.NoError(t, err)
	return s.Status
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func TestSessionRestorePartitionsByDeadline(t *testing.T) {
	h := newHarness(t, may14)
	future := h.session(t, time.Hour, models.SessionStatusActive)
	past := h.session(t, -time.Minute, models.SessionStatusActive)
	edge := h.session(t, 0, models.SessionStatusActive)
	inactive := h.session(t, time.Hour, models.SessionStatusInactive)

	report, err := h.registry.Sessions.Restore(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scheduled)
	assert.Equal(t, 2, report.Resolved)
	assert.True(t, h.registry.Sessions.Has(future.ID))
	assert.False(t, h.registry.Sessions.Has(past.ID))
	assert.False(t, h.registry.Sessions.Has(edge.ID))
	assert.False(t, h.registry.Sessions.Has(inactive.ID))
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, past.ID))
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, edge.ID))

	h.clock.Advance(time.Hour)
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, future.ID))
	assert.Equal(t, 0, h.registry.Sessions.Pending())
	assert.Equal(t, models.SessionStatusInactive, h.sessionStatus(t, inactive.ID))
}

func TestSessionRestoreIsIdempotent(t *testing.T) {
	h := newHarness(t, may14)
	for i := 1; i <= 3; i++ {
		h.session(t, time.Duration(i)*time.Hour, models.SessionStatusActive)
	}

	first, err := h.registry.Sessions.Restore(h.ctx)
	require.NoError(t, err)
	second, err := h.registry.Sessions.Restore(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, first.Scheduled)
	assert.Equal(t, 3, second.Cancelled)
	assert.Equal(t, 3, second.Scheduled)
	assert.Equal(t, 3, h.registry.Sessions.Pending())

	h.clock.Advance(4 * time.Hour)
	assert.Equal(t, 3, h.store.Calls("sessions.ExpireIfActive"))
}

func TestSessionScheduleTwiceExpiresOnce(t *testing.T) {
	h := newHarness(t, may14)
	s := h.session(t, 30*time.Minute, models.SessionStatusActive)

	assert.True(t, h.registry.Sessions.Schedule(s))
	assert.True(t, h.registry.Sessions.Schedule(s))
	assert.Equal(t, 1, h.registry.Sessions.Pending())

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.store.Calls("sessions.ExpireIfActive"))
}

func TestSessionJobIsNoOpAfterLogout(t *testing.T) {
	h := newHarness(t, may14)
	s := h.session(t, time.Hour, models.SessionStatusActive)
	h.registry.Sessions.Schedule(s)

	_, err := h.repos.Sessions.Delete(h.ctx, s.ID)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, h.store.Calls("sessions.ExpireIfActive"))
	assert.Equal(t, 0, h.registry.Sessions.Pending())
}

func TestSessionJobRespectsManualStatusChange(t *testing.T) {
	h := newHarness(t, may14)
	s := h.session(t, time.Hour, models.SessionStatusActive)
	h.registry.Sessions.Schedule(s)

	require.NoError(t, h.repos.Sessions.UpdateStatus(h.ctx, s.ID, models.SessionStatusInactive))

	h.clock.Advance(2 * time.Hour)
	assert.Equal(t, models.SessionStatusInactive, h.sessionStatus(t, s.ID))
}

func TestSessionScheduleSkipsPastDeadline(t *testing.T) {
	h := newHarness(t, may14)
	s := h.session(t, -time.Second, models.SessionStatusActive)
	assert.False(t, h.registry.Sessions.Schedule(s))
	assert.Equal(t, 0, h.registry.Sessions.Pending())
}

// ---------------------------------------------------------------------------
// OTPs
// ---------------------------------------------------------------------------

func (h *harness) sendOtp(t *testing.T, email, code string) *models.Otp {
	t.Helper()
	otp, err := h.repos.Otps.Upsert(h.ctx, &models.Otp{
		Email:  email,
		Kind:   models.OtpKindRegister,
		Code:   code,
		Expiry: h.clock.Now().Add(5 * time.Minute),
	})
	require.NoError(t, err)
	h.registry.Otps.Schedule(otp)
	return otp
}

func TestOtpDeletedDayAfterExpiry(t *testing.T) {
	h := newHarness(t, may14)
	otp := h.sendOtp(t, "a@example.com", "123456")

	h.clock.Advance(24 * time.Hour)
	_, err := h.repos.Otps.FindByID(h.ctx, otp.ID)
	require.NoError(t, err, "kept until expiry + 24h")

	h.clock.Advance(5 * time.Minute)
	_, err = h.repos.Otps.FindByID(h.ctx, otp.ID)
	assert.ErrorIs(t, err, repositories.ErrOtpNotFound)
}

func TestOtpResendMovesDeletion(t *testing.T) {
	h := newHarness(t, may14)
	first := h.sendOtp(t, "a@example.com", "111111")

	h.clock.Advance(10 * time.Hour)
	second := h.sendOtp(t, "a@example.com", "222222")
	require.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, h.registry.Otps.Pending())

	// First deadline passes; row must survive.
	h.clock.Advance(15 * time.Hour)
	row, err := h.repos.Otps.FindByID(h.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "222222", row.Code)

	h.clock.Advance(10 * time.Hour)
	_, err = h.repos.Otps.FindByID(h.ctx, first.ID)
	assert.ErrorIs(t, err, repositories.ErrOtpNotFound)
}

func TestOtpJobRevalidatesUnscheduledResend(t *testing.T) {
	h := newHarness(t, may14)
	otp := h.sendOtp(t, "a@example.com", "111111")

	// Re-sent without going through the worker: the stale job must re-arm, not delete.
	h.clock.Advance(20 * time.Hour)
	_, err := h.repos.Otps.Upsert(h.ctx, &models.Otp{Email: "a@example.com", Kind: models.OtpKindRegister, Code: "999999", Expiry: h.clock.Now().Add(5 * time.Minute)})
	require.NoError(t, err)

	h.clock.Advance(5 * time.Hour)
	_, err = h.repos.Otps.FindByID(h.ctx, otp.ID)
	require.NoError(t, err)
	assert.True(t, h.registry.Otps.Has(otp.ID))

	h.clock.Advance(20 * time.Hour)
	_, err = h.repos.Otps.FindByID(h.ctx, otp.ID)
	assert.ErrorIs(t, err, repositories.ErrOtpNotFound)
}

func TestOtpRestoreDeletesStale(t *testing.T) {
	h := newHarness(t, may14)
	stale, err := h.repos.Otps.Upsert(h.ctx, &models.Otp{Email: "old@example.com", Kind: models.OtpKindRegister, Code: "1", Expiry: may14.Add(-25 * time.Hour)})
	require.NoError(t, err)
	fresh, err := h.repos.Otps.Upsert(h.ctx, &models.Otp{Email: "new@example.com", Kind: models.OtpKindRegister, Code: "2", Expiry: may14.Add(-time.Hour)})
	require.NoError(t, err)

	report, err := h.registry.Otps.Restore(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 1, report.Scheduled)

	_, err = h.repos.Otps.FindByID(h.ctx, stale.ID)
	assert.ErrorIs(t, err, repositories.ErrOtpNotFound)
	assert.True(t, h.registry.Otps.Has(fresh.ID))
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

func (h *harness) invoice(t *testing.T, status models.InvoiceStatus, issued time.Time) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		UserID:        "user-1",
		InvoiceNumber: "SA-" + issued.String() + string(status),
		Plan:          models.PlanRegular,
		BillingCycle:  models.BillingCycleMonthly,
		Price:         1000,
		PaymentMethod: models.PaymentMethodEsewa,
		Status:        status,
		IssuedDate:    issued,
	}
	h.store.InsertInvoice(inv)
	return inv
}

func (h *harness) invoiceExists(id string) bool {
	_, err := h.repos.Invoices.FindByID(h.ctx, id)
	return err == nil
}

func TestPendingInvoiceLivesFortyEightHours(t *testing.T) {
	h := newHarness(t, may14)
	inv := h.invoice(t, models.InvoiceStatusPending, may14)
	require.True(t, h.registry.Invoices.Schedule(inv))

	h.clock.Advance(47 * time.Hour)
	assert.True(t, h.invoiceExists(inv.ID))

	h.clock.Advance(2 * time.Hour)
	assert.False(t, h.invoiceExists(inv.ID))
}

func TestPaidInvoiceSurvivesDeletionDeadline(t *testing.T) {
	h := newHarness(t, may14)
	inv := h.invoice(t, models.InvoiceStatusPending, may14)
	h.registry.Invoices.Schedule(inv)

	h.clock.Advance(10 * time.Hour)
	ok, err := h.repos.Invoices.MarkPaid(h.ctx, inv.ID, "TXN-1", "", h.clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	h.clock.Advance(49 * time.Hour)
	assert.True(t, h.invoiceExists(inv.ID))
	assert.Equal(t, 0, h.store.Calls("invoices.DeleteIfOpenIssuedBefore"))
}

func TestScheduleSkipsPaidInvoiceAndDropsItsJob(t *testing.T) {
	h := newHarness(t, may14)
	inv := h.invoice(t, models.InvoiceStatusPending, may14)
	h.registry.Invoices.Schedule(inv)

	inv.Status = models.InvoiceStatusPaid
	assert.False(t, h.registry.Invoices.Schedule(inv))
	assert.False(t, h.registry.Invoices.Has(inv.ID))
}

func TestFailedInvoiceIsDeleted(t *testing.T) {
	h := newHarness(t, may14)
	inv := h.invoice(t, models.InvoiceStatusFailed, may14.Add(-time.Hour))
	h.registry.Invoices.Schedule(inv)

	h.clock.Advance(47 * time.Hour)
	assert.False(t, h.invoiceExists(inv.ID))
}

func TestInvoiceRestore(t *testing.T) {
	h := newHarness(t, may14)
	overdue := h.invoice(t, models.InvoiceStatusPending, may14.Add(-49*time.Hour))
	overdueFailed := h.invoice(t, models.InvoiceStatusFailed, may14.Add(-48*time.Hour))
	upcoming := h.invoice(t, models.InvoiceStatusPending, may14.Add(-time.Hour))
	paid := h.invoice(t, models.InvoiceStatusPaid, may14.Add(-100*time.Hour))

	report, err := h.registry.Invoices.Restore(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, RestoreReport{Scheduled: 1, Resolved: 2}, report)
	assert.False(t, h.invoiceExists(overdue.ID))
	assert.False(t, h.invoiceExists(overdueFailed.ID))
	assert.True(t, h.invoiceExists(upcoming.ID))
	assert.True(t, h.invoiceExists(paid.ID))
	assert.True(t, h.registry.Invoices.Has(upcoming.ID))
	assert.False(t, h.registry.Invoices.Has(paid.ID))
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func (h *harness) subscriber(t *testing.T, plan models.Plan, status models.SubscriptionStatus, end time.Time) *models.User {
	t.Helper()
	u := &models.User{
		Email:              string(plan) + end.String() + "@example.com",
		Plan:               plan,
		BillingCycle:       models.BillingCycleMonthly,
		SubscriptionStatus: status,
		PlanEndDate:        &end,
		UsedQuery:          42,
	}
	require.NoError(t, h.repos.Users.Create(h.ctx, u))
	return u
}

func (h *harness) subscriptionStatus(t *testing.T, id string) models.SubscriptionStatus {
	t.Helper()
	u, err := h.repos.Users.FindByID(h.ctx, id)
	require.NoError(t, err)
	return u.SubscriptionStatus
}

func TestSubscriptionExpiresAtPlanEnd(t *testing.T) {
	h := newHarness(t, may14)
	u := h.subscriber(t, models.PlanRegular, models.SubscriptionStatusActive, may14.Add(72*time.Hour))
	require.NoError(t, h.registry.Subscriptions.HandleSubscriptionUpdate(h.ctx, u))
	assert.True(t, h.registry.Subscriptions.Has(u.ID))

	h.clock.Advance(71 * time.Hour)
	assert.Equal(t, models.SubscriptionStatusActive, h.subscriptionStatus(t, u.ID))
	h.clock.Advance(time.Hour)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, u.ID))
}

func TestCancelledSubscriptionStillExpires(t *testing.T) {
	h := newHarness(t, may14)
	u := h.subscriber(t, models.PlanPro, models.SubscriptionStatusCancelled, may14.Add(time.Hour))
	require.NoError(t, h.registry.Subscriptions.HandleSubscriptionUpdate(h.ctx, u))

	h.clock.Advance(time.Hour)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, u.ID))
}

func TestLapsedSubscriptionExpiresImmediately(t *testing.T) {
	h := newHarness(t, may14)
	u := h.subscriber(t, models.PlanPro, models.SubscriptionStatusActive, may14)

	require.NoError(t, h.registry.Subscriptions.HandleSubscriptionUpdate(h.ctx, u))
	assert.Equal(t, models.SubscriptionStatusExpired, u.SubscriptionStatus)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, u.ID))
	assert.False(t, h.registry.Subscriptions.Has(u.ID))
}

func TestRenewedSubscriptionJobRearms(t *testing.T) {
	h := newHarness(t, may14)
	u := h.subscriber(t, models.PlanRegular, models.SubscriptionStatusActive, may14.Add(time.Hour))
	h.registry.Subscriptions.Schedule(u)

	// Extended in the store without rescheduling.
	later := may14.Add(10 * time.Hour)
	u.PlanEndDate = &later
	require.NoError(t, h.repos.Users.UpdatePlan(h.ctx, u))

	h.clock.Advance(2 * time.Hour)
	assert.Equal(t, models.SubscriptionStatusActive, h.subscriptionStatus(t, u.ID))
	deadline, ok := h.registry.Subscriptions.expiry.Deadline(u.ID)
	require.True(t, ok)
	assert.Equal(t, later, deadline)

	h.clock.Advance(8 * time.Hour)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, u.ID))
}

func TestSubscriptionRestore(t *testing.T) {
	h := newHarness(t, may14)
	lapsed := h.subscriber(t, models.PlanRegular, models.SubscriptionStatusActive, may14.Add(-time.Hour))
	live := h.subscriber(t, models.PlanPro, models.SubscriptionStatusActive, may14.Add(time.Hour))
	free := h.subscriber(t, models.PlanFree, models.SubscriptionStatusNone, may14.Add(-time.Hour))

	report, err := h.registry.Subscriptions.Restore(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scheduled)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, lapsed.ID))
	assert.Equal(t, models.SubscriptionStatusNone, h.subscriptionStatus(t, free.ID))
	assert.True(t, h.registry.Subscriptions.Has(live.ID))
}

func TestMonthlyResetRunsOnFirstAndRearms(t *testing.T) {
	h := newHarness(t, may14)
	u := h.subscriber(t, models.PlanRegular, models.SubscriptionStatusActive, may14.Add(90*24*time.Hour))

	_, err := h.registry.Subscriptions.Restore(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, h.store.Calls("users.ResetUsedQuery"), "not the 1st")

	next, ok := h.registry.Subscriptions.NextResetAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), next)

	h.clock.Set(next)
	assert.Equal(t, 1, h.store.Calls("users.ResetUsedQuery"))
	got, err := h.repos.Users.FindByID(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UsedQuery)

	next, ok = h.registry.Subscriptions.NextResetAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestRestoreOnFirstOfMonthResetsImmediately(t *testing.T) {
	h := newHarness(t, time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC))
	h.subscriber(t, models.PlanPro, models.SubscriptionStatusActive, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

	_, err := h.registry.Subscriptions.Restore(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.store.Calls("users.ResetUsedQuery"))

	next, ok := h.registry.Subscriptions.NextResetAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestNextMonthStart(t *testing.T) {
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	cases := []struct {
		in, want time.Time
	}{
		{time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, kathmandu), time.Date(2025, 4, 1, 0, 0, 0, 0, kathmandu)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NextMonthStart(tc.in))
	}
}

// ---------------------------------------------------------------------------
// Registry and sweeper
// ---------------------------------------------------------------------------

func TestRestoreAll(t *testing.T) {
	h := newHarness(t, may14)
	h.session(t, time.Hour, models.SessionStatusActive)
	h.session(t, -time.Hour, models.SessionStatusActive)
	h.invoice(t, models.InvoiceStatusPending, may14)
	h.subscriber(t, models.PlanPro, models.SubscriptionStatusActive, may14.Add(time.Hour))

	reports, err := h.registry.RestoreAll(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, reports["session_expiry"].Scheduled)
	assert.Equal(t, 1, reports["session_expiry"].Resolved)
	assert.Equal(t, 1, reports["invoice_cleanup"].Scheduled)
	assert.Equal(t, 1, reports["subscription_expiry"].Scheduled)
	assert.Equal(t, 0, reports["otp_cleanup"].Scheduled)
}

func TestSweepResolvesMissedDeadlines(t *testing.T) {
	h := newHarness(t, may14)
	s := h.session(t, time.Hour, models.SessionStatusActive)
	inv := h.invoice(t, models.InvoiceStatusPending, may14)

	// Nothing scheduled: simulates timers lost across a suspend.
	h.clock.Advance(50 * time.Hour)

	sweeper := NewSweeper(h.registry, time.Hour)
	assert.Equal(t, 2, sweeper.Sweep(h.ctx))
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, s.ID))
	assert.False(t, h.invoiceExists(inv.ID))

	assert.Equal(t, 0, sweeper.Sweep(h.ctx))
}

// ---------------------------------------------------------------------------
// Store failures during recovery
// ---------------------------------------------------------------------------

var errTransient = errors.New("transient db error")

type failingSessions struct {
	repositories.SessionRepository
	failID string
}

func (f failingSessions) ExpireIfActive(ctx context.Context, id string) (bool, error) {
	if id == f.failID {
		return false, errTransient
	}
	return f.SessionRepository.ExpireIfActive(ctx, id)
}

type failingUsers struct {
	repositories.UserRepository
	failID string
}

func (f failingUsers) ExpireSubscriptionIfLapsed(ctx context.Context, id string, now time.Time) (bool, error) {
	if id == f.failID {
		return false, errTransient
	}
	return f.UserRepository.ExpireSubscriptionIfLapsed(ctx, id, now)
}

func (h *harness) newScheduler(name string) *scheduler.Scheduler {
	return scheduler.New(name, scheduler.Options{
		Clock:   h.clock,
		Metrics: scheduler.MustNewMetrics(prometheus.NewRegistry()),
	})
}

func TestSessionRestoreContinuesPastFailingRow(t *testing.T) {
	h := newHarness(t, may14)
	var overdue []*models.Session
	for i := 1; i <= 5; i++ {
		overdue = append(overdue, h.session(t, -time.Duration(i)*time.Minute, models.SessionStatusActive))
	}
	future := h.session(t, time.Hour, models.SessionStatusActive)

	sched := h.newScheduler("session_expiry")
	t.Cleanup(sched.Shutdown)
	w := NewSessionExpiryWorker(failingSessions{SessionRepository: h.repos.Sessions, failID: overdue[0].ID}, sched)

	report, err := w.Restore(h.ctx)
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, report.Resolved)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Scheduled)
	assert.True(t, w.Has(future.ID))

	assert.Equal(t, models.SessionStatusActive, h.sessionStatus(t, overdue[0].ID))
	for _, s := range overdue[1:] {
		assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, s.ID))
	}

	// The failed row is left for the next overdue pass.
	n, err := NewSessionExpiryWorker(h.repos.Sessions, sched).ResolveOverdue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, overdue[0].ID))
}

func TestSessionResolveOverdueContinuesPastFailingRow(t *testing.T) {
	h := newHarness(t, may14)
	first := h.session(t, -time.Minute, models.SessionStatusActive)
	second := h.session(t, -2*time.Minute, models.SessionStatusActive)

	sched := h.newScheduler("session_expiry")
	t.Cleanup(sched.Shutdown)
	w := NewSessionExpiryWorker(failingSessions{SessionRepository: h.repos.Sessions, failID: first.ID}, sched)

	n, err := w.ResolveOverdue(h.ctx)
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.SessionStatusExpired, h.sessionStatus(t, second.ID))
}

func TestSubscriptionRestoreArmsResetDespiteFailures(t *testing.T) {
	h := newHarness(t, may14)
	broken := h.subscriber(t, models.PlanRegular, models.SubscriptionStatusActive, may14.Add(-time.Hour))
	lapsed := h.subscriber(t, models.PlanPro, models.SubscriptionStatusActive, may14.Add(-2*time.Hour))

	expiry, reset := h.newScheduler("subscription_expiry"), h.newScheduler("query_reset")
	t.Cleanup(expiry.Shutdown)
	t.Cleanup(reset.Shutdown)
	w := NewSubscriptionWorker(failingUsers{UserRepository: h.repos.Users, failID: broken.ID}, expiry, reset)

	report, err := w.Restore(h.ctx)
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, models.SubscriptionStatusExpired, h.subscriptionStatus(t, lapsed.ID))
	assert.Equal(t, models.SubscriptionStatusActive, h.subscriptionStatus(t, broken.ID))

	next, ok := w.NextResetAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), next)
}
