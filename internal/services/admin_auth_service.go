package services

import (
	"context"
	"errors"
	"strconv"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"
)

type AdminAuthService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, clientIP string) (*dto.LoginResult, error)
	Refresh(ctx context.Context, refreshToken, ip string) (string, error)
	SeedFirstAdmin(ctx context.Context) error
}

type AdminAuthServiceImpl struct {
	*Deps
}

func NewAdminAuthService(d *Deps) AdminAuthService {
	return &AdminAuthServiceImpl{Deps: d}
}

// ParseAdminKey accepts only positive integers.
func ParseAdminKey(raw string) (int64, error) {
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || key <= 0 {
		return 0, apperrors.NewBadRequestError("Admin key must be a positive integer")
	}
	return key, nil
}

func (s *AdminAuthServiceImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, clientIP string) (*dto.LoginResult, error) {
	key, err := ParseAdminKey(req.Key.String())
	if err != nil {
		return nil, err
	}
	ip := req.IP
	if ip == "" {
		ip = clientIP
	}
	if ip == "" {
		return nil, apperrors.NewBadRequestError("All fields are required")
	}

	admin, err := s.Repos.Admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if admin.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountInactive
	}
	if admin.Key != key {
		logger.CtxWarn(ctx, "admin key mismatch", "admin_id", admin.ID)
		return nil, apperrors.ErrInvalidKey
	}
	if admin.IPAddress != "" && admin.IPAddress != ip {
		logger.CtxWarn(ctx, "admin login from unknown ip", "admin_id", admin.ID, "ip", ip)
		return nil, apperrors.ErrIPMismatch
	}
	if !auth.CheckPasswordHash(req.Password, admin.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.AdminTokens.IssuePair(admin.ID, admin.Email, string(models.UserRoleAdmin))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.Repos.Admins.TouchLastLogin(ctx, admin.ID, s.now()); err != nil {
		logger.CtxWithError(ctx, "failed to update admin last login", err, "admin_id", admin.ID)
	}

	logger.CtxInfo(ctx, "admin logged in", "admin_id", admin.ID)
	return &dto.LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RefreshTTL:   pair.RefreshTTL,
	}, nil
}

func (s *AdminAuthServiceImpl) Refresh(ctx context.Context, refreshToken, ip string) (string, error) {
	claims, err := s.AdminTokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", apperrors.NewForbiddenError("Invalid refresh token").WithError(err)
	}

	admin, err := s.Repos.Admins.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", translate(err)
	}
	if admin.Status != models.UserStatusActive {
		return "", apperrors.ErrAccountInactive
	}
	if admin.IPAddress != ip {
		return "", apperrors.ErrIPMismatch
	}

	access, err := s.AdminTokens.IssueAccess(admin.ID, admin.Email, string(models.UserRoleAdmin))
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return access, nil
}

// SeedFirstAdmin creates the configured admin account when it does not exist yet.
func (s *AdminAuthServiceImpl) SeedFirstAdmin(ctx context.Context) error {
	cfg := s.Config.FirstAdmin
	if cfg.Email == "" || cfg.Password == "" {
		logger.CtxDebug(ctx, "no first admin configured")
		return nil
	}

	exists, err := s.Repos.Admins.ExistsByEmail(ctx, cfg.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		Email:        cfg.Email,
		PasswordHash: hash,
		Key:          cfg.Key,
		IPAddress:    cfg.IP,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.Repos.Admins.Create(ctx, admin); err != nil {
		return err
	}
	logger.CtxInfo(ctx, "first admin created", "admin_id", admin.ID, "email", admin.Email)
	return nil
}
