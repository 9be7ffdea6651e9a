package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sajilo_backend/internal/config"
	"sajilo_backend/internal/repositories/memory"
	"sajilo_backend/internal/scheduler"
	"sajilo_backend/internal/services"
	"sajilo_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.Email.Disabled = true
	clock := scheduler.NewFakeClock(time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	repos := memory.New(clock.Now).Repositories()
	registry := workers.NewRegistry(repos, scheduler.Options{Clock: clock, Metrics: scheduler.MustNewMetrics(reg)})
	t.Cleanup(registry.Shutdown)

	deps, err := initializeDeps(cfg, repos, registry)
	require.NoError(t, err)
	deps.Clock = clock

	return SetupRouter(cfg, services.NewServiceContainer(deps), deps, reg)
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "/api/v1/users/login"))
}

func TestRoutesAreMounted(t *testing.T) {
	r := newTestRouter(t)

	mounted := map[string]bool{}
	for _, route := range r.Routes() {
		mounted[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/users/register",
		"POST /api/v1/users/login",
		"POST /api/v1/users/logout",
		"PUT /api/v1/users/reset-password",
		"PUT /api/v1/users/cancel-subscription/:id",
		"POST /api/v1/auth/refresh-token",
		"POST /api/v1/users/payment/esewa/initiate/:id",
		"POST /api/v1/users/payment/esewa/verify/:id",
		"POST /api/v1/users/payment/khalti/initiate/:id",
		"POST /api/v1/users/payment/khalti/verify/:id",
		"POST /api/v1/otp/send",
		"POST /api/v1/otp/verify",
		"POST /api/v1/otp/verify/link",
		"POST /api/v1/users/create-ticket",
		"POST /api/v1/admin/login",
		"POST /api/v1/admin/logout",
		"POST /api/v1/auth/refresh-token-admin",
		"POST /api/v1/admin/otp/send/ip-reset",
		"GET /api/v1/admin/get-all-sessions",
		"GET /api/v1/admin/get-all-invoices",
		"GET /api/v1/admin/get-all-tickets",
		"PUT /api/v1/admin/edit-session-status/:id",
		"PUT /api/v1/admin/edit-invoice-status/:id",
		"PUT /api/v1/admin/edit-ticket-status/:id",
		"DELETE /api/v1/admin/delete-session/:id",
		"DELETE /api/v1/admin/delete-invoice/:id",
		"DELETE /api/v1/admin/delete-ticket/:id",
	} {
		assert.True(t, mounted[want], want)
	}
}
