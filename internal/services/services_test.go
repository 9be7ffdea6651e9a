package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/config"
	"sajilo_backend/internal/email"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/payment"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/repositories/memory"
	"sajilo_backend/internal/scheduler"
	"sajilo_backend/internal/workers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var may14 = time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC)

const (
	testIP = "10.0.0.1"
	testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type stubEsewa struct {
	*payment.EsewaClient
	statusErr error
	checks    int
}

func (s *stubEsewa) CheckStatus(ctx context.Context, totalAmount, transactionUUID string) (*payment.EsewaStatus, error) {
	s.checks++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &payment.EsewaStatus{Status: payment.EsewaStatusComplete, TransactionUUID: transactionUUID}, nil
}

type stubKhalti struct {
	initErr   error
	lookupErr error
	lookup    payment.KhaltiLookupResponse
	initiated []payment.KhaltiInitiateRequest
}

func (s *stubKhalti) Initiate(ctx context.Context, req payment.KhaltiInitiateRequest) (*payment.KhaltiInitiateResponse, error) {
	s.initiated = append(s.initiated, req)
	if s.initErr != nil {
		return nil, s.initErr
	}
	return &payment.KhaltiInitiateResponse{Pidx: "PIDX-1", PaymentURL: "https://test-pay.khalti.com/?pidx=PIDX-1"}, nil
}

func (s *stubKhalti) Lookup(ctx context.Context, pidx string) (*payment.KhaltiLookupResponse, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	resp := s.lookup
	resp.Pidx = pidx
	return &resp, nil
}

type harness struct {
	ctx      context.Context
	clock    *scheduler.FakeClock
	store    *memory.Store
	repos    *repositories.Repositories
	registry *workers.Registry
	mail     *email.Recorder
	esewa    *stubEsewa
	khalti   *stubKhalti
	deps     *Deps
	svc      *ServiceContainer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := scheduler.NewFakeClock(may14)
	store := memory.New(clock.Now)
	repos := store.Repositories()
	registry := workers.NewRegistry(repos, scheduler.Options{
		Clock:   clock,
		Metrics: scheduler.MustNewMetrics(prometheus.NewRegistry()),
	})
	t.Cleanup(registry.Shutdown)

	cfg := config.Defaults()
	templates, err := email.NewDefaultTemplateManager()
	require.NoError(t, err)
	rec := email.NewRecorder()

	esewa := &stubEsewa{EsewaClient: payment.NewEsewaClient("EPAYTEST", "secret", "http://esewa.invalid", time.Second)}
	khalti := &stubKhalti{lookup: payment.KhaltiLookupResponse{Status: payment.KhaltiStatusCompleted, TransactionID: "KT-1"}}

	deps := &Deps{
		Repos:       repos,
		Workers:     registry,
		Tokens:      auth.NewTokenManager("access", "refresh", 15*time.Minute, 7*24*time.Hour, clock.Now),
		AdminTokens: auth.NewTokenManager("admin-access", "admin-refresh", 15*time.Minute, 7*24*time.Hour, clock.Now),
		Mailer:      email.NewMailer(rec, templates),
		Esewa:       esewa,
		Khalti:      khalti,
		Clock:       clock,
		Config:      cfg,
		Go:          func(f func()) { f() },
	}
	return &harness{
		ctx:      context.Background(),
		clock:    clock,
		store:    store,
		repos:    repos,
		registry: registry,
		mail:     rec,
		esewa:    esewa,
		khalti:   khalti,
		deps:     deps,
		svc:      NewServiceContainer(deps),
	}
}

func (h *harness) user(t *testing.T, mutate func(u *models.User)) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{
		FullName:           "Sita Sharma",
		Email:              "sita@example.com",
		PasswordHash:       hash,
		IPAddress:          testIP,
		Role:               models.UserRoleUser,
		Status:             models.UserStatusActive,
		Plan:               models.PlanFree,
		BillingCycle:       models.BillingCycleNone,
		SubscriptionStatus: models.SubscriptionStatusNone,
		QueryLimit:         models.FreeQueryLimit,
	}
	if mutate != nil {
		mutate(u)
	}
	require.NoError(t, h.repos.Users.Create(h.ctx, u))
	return u
}

func (h *harness) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := h.repos.Users.FindByID(h.ctx, id)
	require.NoError(t, err)
	return u
}

func esewaData(t *testing.T, number, amount, status string) string {
	t.Helper()
	raw, err := json.Marshal(payment.EsewaCallback{
		TransactionCode: "000AWEO",
		Status:          status,
		TotalAmount:     amount,
		TransactionUUID: number,
		ProductCode:     "EPAYTEST",
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func ptr(t time.Time) *time.Time { return &t }

var errGateway = errors.New("gateway unavailable")

func paymentCallback(pidx, number string) payment.KhaltiCallback {
	return payment.KhaltiCallback{
		Pidx:            pidx,
		TransactionID:   "KT-CLIENT",
		Status:          payment.KhaltiStatusCompleted,
		PurchaseOrderID: number,
	}
}
