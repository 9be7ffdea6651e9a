package services

import (
	"encoding/json"
	"testing"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, h *harness, ip string) *dto.LoginResult {
	t.Helper()
	res, err := h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "sita@example.com", Password: "password123"}, ip, testUA)
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	u, err := h.svc.AuthService.Register(h.ctx, &dto.RegisterRequest{
		FullName: "Hari", Email: "hari@example.com", Password: "password123",
	}, "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, u.Plan)
	assert.Equal(t, models.BillingCycleNone, u.BillingCycle)
	assert.Equal(t, models.SubscriptionStatusNone, u.SubscriptionStatus)
	assert.Equal(t, models.FreeQueryLimit, u.QueryLimit)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err = h.svc.AuthService.Register(h.ctx, &dto.RegisterRequest{
		FullName: "Other", Email: "other@example.com", Password: "password123",
	}, "10.0.0.9")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateDevice)

	_, err = h.svc.AuthService.Register(h.ctx, &dto.RegisterRequest{
		FullName: "Hari", Email: "hari@example.com", Password: "password123",
	}, "10.0.0.10")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestLoginKeepsOneSessionPerDevice(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)

	first := login(t, h, testIP)
	second := login(t, h, testIP)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	active, err := h.repos.Sessions.ListActive(h.ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.RefreshToken, active[0].RefreshToken)
	assert.Equal(t, "Windows NT 10.0 | Chrome/120.0.0.0", active[0].UserAgent)
	assert.True(t, active[0].ExpiresAt.Equal(may14.Add(7*24*time.Hour)))
	assert.Equal(t, 1, h.registry.Sessions.Pending())
	assert.True(t, h.registry.Sessions.Has(active[0].ID))

	_, err = h.repos.Sessions.FindByRefreshToken(h.ctx, first.RefreshToken)
	assert.Error(t, err)
}

func TestLoginRejections(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	h.user(t, func(u *models.User) {
		u.Email = "inactive@example.com"
		u.IPAddress = "10.0.0.2"
		u.Status = models.UserStatusInactive
	})

	_, err := h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "sita@example.com", Password: "wrong-pass"}, testIP, testUA)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"}, testIP, testUA)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "sita@example.com", Password: "password123"}, "192.168.1.1", testUA)
	assert.ErrorIs(t, err, apperrors.ErrNewDevice)

	_, err = h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "inactive@example.com", Password: "password123"}, "10.0.0.2", testUA)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)

	_, err = h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "sita@example.com", Password: "password123"}, testIP, "")
	assert.Error(t, err)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	res := login(t, h, testIP)

	h.clock.Advance(7 * 24 * time.Hour)

	s, err := h.repos.Sessions.FindByRefreshToken(h.ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusExpired, s.Status)
	assert.Equal(t, 0, h.registry.Sessions.Pending())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	res := login(t, h, testIP)

	err := h.svc.AuthService.Logout(h.ctx, res.RefreshToken, "10.9.9.9")
	assert.ErrorIs(t, err, apperrors.ErrIPMismatch)

	err = h.svc.AuthService.Logout(h.ctx, "garbage", testIP)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	require.NoError(t, h.svc.AuthService.Logout(h.ctx, res.RefreshToken, testIP))
	assert.Equal(t, 0, h.registry.Sessions.Pending())

	err = h.svc.AuthService.Logout(h.ctx, res.RefreshToken, testIP)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	// Nothing fires for the deleted session.
	h.clock.Advance(8 * 24 * time.Hour)
	assert.Equal(t, 0, h.store.Calls("sessions.ExpireIfActive"))
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	res := login(t, h, testIP)

	h.clock.Advance(time.Hour)
	access, err := h.svc.AuthService.Refresh(h.ctx, res.RefreshToken, testIP)
	require.NoError(t, err)
	claims, err := h.deps.Tokens.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "sita@example.com", claims.Email)

	_, err = h.svc.AuthService.Refresh(h.ctx, res.RefreshToken, "10.9.9.9")
	assert.ErrorIs(t, err, apperrors.ErrIPMismatch)

	_, err = h.svc.AuthService.Refresh(h.ctx, "unknown", testIP)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.HTTPCode)
}

func TestRefreshRejectsInactiveSession(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	res := login(t, h, testIP)

	s, err := h.repos.Sessions.FindByRefreshToken(h.ctx, res.RefreshToken)
	require.NoError(t, err)
	_, err = h.svc.SessionService.UpdateStatus(h.ctx, s.ID, models.SessionStatusInactive)
	require.NoError(t, err)
	assert.False(t, h.registry.Sessions.Has(s.ID))

	_, err = h.svc.AuthService.Refresh(h.ctx, res.RefreshToken, testIP)
	assert.ErrorIs(t, err, apperrors.ErrSessionInactive)
}

func TestResetPassword(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	reset := func(otp, password, confirm string) error {
		return h.svc.AuthService.ResetPassword(h.ctx, &dto.ResetPasswordRequest{
			Email: "sita@example.com", Otp: otp, NewPassword: password, ConfirmPassword: confirm,
		})
	}

	// No code was ever sent for this account.
	err := reset("123456", "new-password", "new-password")
	assert.ErrorIs(t, err, apperrors.ErrOtpInvalid)
	assert.Empty(t, h.mail.Sent())

	require.NoError(t, h.svc.OtpService.Send(h.ctx, &dto.SendOtpRequest{Email: "sita@example.com", Type: models.OtpKindPasswordReset}))
	code := mailedCode(t, h, "sita@example.com", models.OtpKindPasswordReset)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	assert.ErrorIs(t, reset(code, "new-password", "different"), apperrors.ErrPasswordMismatch)
	assert.ErrorIs(t, reset(code, "password123", "password123"), apperrors.ErrPasswordReused)
	assert.ErrorIs(t, reset(wrong, "new-password", "new-password"), apperrors.ErrOtpInvalid)

	require.NoError(t, reset(code, "new-password", "new-password"))
	_, err = h.svc.AuthService.Login(h.ctx, &dto.LoginRequest{Email: "sita@example.com", Password: "new-password"}, testIP, testUA)
	assert.NoError(t, err)

	// The code is single use.
	assert.ErrorIs(t, reset(code, "another-password", "another-password"), apperrors.ErrOtpInvalid)
}

func TestResetPasswordRejectsExpiredCode(t *testing.T) {
	h := newHarness(t)
	h.user(t, nil)
	require.NoError(t, h.svc.OtpService.Send(h.ctx, &dto.SendOtpRequest{Email: "sita@example.com", Type: models.OtpKindPasswordReset}))
	code := mailedCode(t, h, "sita@example.com", models.OtpKindPasswordReset)

	h.clock.Advance(6 * time.Minute)
	err := h.svc.AuthService.ResetPassword(h.ctx, &dto.ResetPasswordRequest{
		Email: "sita@example.com", Otp: code, NewPassword: "new-password", ConfirmPassword: "new-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrOtpExpired)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	u := h.user(t, nil)

	_, err := h.svc.AuthService.UpdateProfile(h.ctx, u.ID, &dto.UpdateProfileRequest{
		Email: u.Email, CurrentPassword: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrNoChanges)

	_, err = h.svc.AuthService.UpdateProfile(h.ctx, u.ID, &dto.UpdateProfileRequest{
		Email: "new@example.com", CurrentPassword: "nope",
	})
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)

	got, err := h.svc.AuthService.UpdateProfile(h.ctx, u.ID, &dto.UpdateProfileRequest{
		Email: "new@example.com", CurrentPassword: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestAdminLogin(t *testing.T) {
	h := newHarness(t)
	h.deps.Config.FirstAdmin.Email = "admin@example.com"
	h.deps.Config.FirstAdmin.Password = "admin-password"
	h.deps.Config.FirstAdmin.Key = 4242
	h.deps.Config.FirstAdmin.IP = "10.1.1.1"
	require.NoError(t, h.svc.AdminAuthService.SeedFirstAdmin(h.ctx))
	require.NoError(t, h.svc.AdminAuthService.SeedFirstAdmin(h.ctx))

	req := func(key, ip, password string) *dto.AdminLoginRequest {
		return &dto.AdminLoginRequest{Email: "admin@example.com", Password: password, Key: json.Number(key), IP: ip}
	}

	_, err := h.svc.AdminAuthService.Login(h.ctx, req("abc", "10.1.1.1", "admin-password"), "")
	require.Error(t, err)
	_, err = h.svc.AdminAuthService.Login(h.ctx, req("-3", "10.1.1.1", "admin-password"), "")
	require.Error(t, err)

	_, err = h.svc.AdminAuthService.Login(h.ctx, req("1", "10.1.1.1", "admin-password"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidKey)

	_, err = h.svc.AdminAuthService.Login(h.ctx, req("4242", "10.1.1.2", "admin-password"), "")
	assert.ErrorIs(t, err, apperrors.ErrIPMismatch)

	_, err = h.svc.AdminAuthService.Login(h.ctx, req("4242", "10.1.1.1", "wrong"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	res, err := h.svc.AdminAuthService.Login(h.ctx, req("4242", "", "admin-password"), "10.1.1.1")
	require.NoError(t, err)
	claims, err := h.deps.AdminTokens.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	access, err := h.svc.AdminAuthService.Refresh(h.ctx, res.RefreshToken, "10.1.1.1")
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = h.svc.AdminAuthService.Refresh(h.ctx, res.RefreshToken, "10.1.1.9")
	assert.ErrorIs(t, err, apperrors.ErrIPMismatch)
}
