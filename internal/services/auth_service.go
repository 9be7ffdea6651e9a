package services

import (
	"context"
	"errors"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ip string) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest, ip, userAgent string) (*dto.LoginResult, error)
	Logout(ctx context.Context, refreshToken, ip string) error
	Refresh(ctx context.Context, refreshToken, ip string) (string, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error)
	CancelSubscription(ctx context.Context, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	*Deps
	subscriptions SubscriptionService
}

func NewAuthService(d *Deps) AuthService {
	return &AuthServiceImpl{Deps: d, subscriptions: NewSubscriptionService(d)}
}

// Register creates a free account. One account per device IP.
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest, ip string) (*models.User, error) {
	taken, err := s.Repos.Users.ExistsByIP(ctx, ip)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateDevice
	}

	exists, err := s.Repos.Users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		FullName:           req.FullName,
		Email:              req.Email,
		PasswordHash:       hash,
		IPAddress:          ip,
		Role:               models.UserRoleUser,
		Status:             models.UserStatusActive,
		Plan:               models.PlanFree,
		BillingCycle:       models.BillingCycleNone,
		SubscriptionStatus: models.SubscriptionStatusNone,
		QueryLimit:         models.FreeQueryLimit,
	}
	if err := s.Repos.Users.Create(ctx, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest, ip, userAgent string) (*dto.LoginResult, error) {
	if ip == "" || userAgent == "" {
		return nil, apperrors.NewBadRequestError("All fields are required")
	}

	user, err := s.Repos.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountInactive
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.IPAddress != "" && user.IPAddress != ip {
		logger.CtxWarn(ctx, "login from new device", "user_id", user.ID, "ip", ip)
		return nil, apperrors.ErrNewDevice
	}

	now := s.now()
	device := auth.SummarizeUserAgent(userAgent)

	// At most one live session per (user, ip, device).
	if prev, err := s.Repos.Sessions.FindActiveByDevice(ctx, user.ID, ip, device); err == nil {
		if _, err := s.Repos.Sessions.Delete(ctx, prev.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		s.Workers.Sessions.Cancel(prev.ID)
	} else if !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, apperrors.InternalError(err)
	}

	stale, err := s.Repos.Sessions.DeleteStaleForUser(ctx, user.ID, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	for _, id := range stale {
		s.Workers.Sessions.Cancel(id)
	}

	pair, err := s.Tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	session := &models.Session{
		UserID:       user.ID,
		IPAddress:    ip,
		UserAgent:    device,
		RefreshToken: pair.RefreshToken,
		Status:       models.SessionStatusActive,
		ExpiresAt:    now.Add(s.Config.Session.TTL.Duration),
	}
	if err := s.Repos.Sessions.Create(ctx, session); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.Repos.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.CtxWithError(ctx, "failed to update last login", err, "user_id", user.ID)
	}
	s.Workers.Sessions.Schedule(session)

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID, "session_id", session.ID)
	return &dto.LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RefreshTTL:   s.Config.Session.TTL.Duration,
	}, nil
}

// Logout deletes the session behind refreshToken and drops its expiry job.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken, ip string) error {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	session, err := s.Repos.Sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return translate(err)
	}
	if session.UserID != claims.UserID {
		return apperrors.ErrSessionNotFound
	}
	if session.Status != models.SessionStatusActive {
		return apperrors.ErrSessionInactive
	}
	if !session.ExpiresAt.After(s.now()) {
		return apperrors.ErrSessionExpired
	}
	if session.IPAddress != ip {
		return apperrors.ErrIPMismatch
	}

	if _, err := s.Repos.Sessions.Delete(ctx, session.ID); err != nil {
		return apperrors.InternalError(err)
	}
	s.Workers.Sessions.Cancel(session.ID)

	logger.CtxInfo(ctx, "user logged out", "user_id", session.UserID, "session_id", session.ID)
	return nil
}

// Refresh issues a new access token for a live session on the same IP.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, ip string) (string, error) {
	session, err := s.Repos.Sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return "", apperrors.NewForbiddenError("Session not found. Please log in again")
		}
		return "", apperrors.InternalError(err)
	}
	if session.Status != models.SessionStatusActive {
		return "", apperrors.ErrSessionInactive
	}
	if !session.ExpiresAt.After(s.now()) {
		if _, err := s.Repos.Sessions.Delete(ctx, session.ID); err != nil {
			logger.CtxWithError(ctx, "failed to delete expired session", err, "session_id", session.ID)
		}
		s.Workers.Sessions.Cancel(session.ID)
		return "", apperrors.ErrSessionExpired
	}
	if session.IPAddress != ip {
		return "", apperrors.ErrIPMismatch
	}

	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", apperrors.NewForbiddenError("Invalid refresh token").WithError(err)
	}

	user, err := findUser(ctx, s.Deps, claims.UserID)
	if err != nil {
		return "", err
	}
	if user.Status != models.UserStatusActive {
		return "", apperrors.ErrAccountInactive
	}

	access, err := s.Tokens.IssueAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return access, nil
}

// ResetPassword sets a new password once the password-reset code for the email is consumed.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.Repos.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrEmailUnknown
		}
		return apperrors.InternalError(err)
	}
	if auth.CheckPasswordHash(req.NewPassword, user.PasswordHash) {
		return apperrors.ErrPasswordReused
	}

	otp, err := s.Repos.Otps.FindByEmailKind(ctx, user.Email, models.OtpKindPasswordReset)
	if err != nil {
		return translate(err)
	}
	if err := consumeOtp(ctx, s.Deps, otp, req.Otp); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.Repos.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return nil, apperrors.ErrWrongPassword
	}

	changingEmail := req.Email != user.Email
	changingPassword := req.NewPassword != ""
	if !changingEmail && !changingPassword {
		return nil, apperrors.ErrNoChanges
	}

	if changingEmail {
		taken, err := s.Repos.Users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrEmailTaken
		}
		if err := s.Repos.Users.UpdateEmail(ctx, user.ID, req.Email); err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.Email = req.Email
	}
	if changingPassword {
		if auth.CheckPasswordHash(req.NewPassword, user.PasswordHash) {
			return nil, apperrors.ErrPasswordReused
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.Repos.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.PasswordHash = hash
	}
	return user, nil
}

func (s *AuthServiceImpl) CancelSubscription(ctx context.Context, userID string) (*models.User, error) {
	return s.subscriptions.Cancel(ctx, userID)
}
