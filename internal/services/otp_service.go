package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"
)

type OtpService interface {
	Send(ctx context.Context, req *dto.SendOtpRequest) error
	SendIPReset(ctx context.Context, req *dto.SendIPResetRequest) error
	Verify(ctx context.Context, req *dto.VerifyOtpRequest) error
	VerifyLink(ctx context.Context, req *dto.VerifyLinkRequest) error
	ConfirmIPReset(ctx context.Context, req *dto.ConfirmIPResetRequest, ip string) error
}

type OtpServiceImpl struct {
	*Deps
}

func NewOtpService(d *Deps) OtpService {
	return &OtpServiceImpl{Deps: d}
}

func (s *OtpServiceImpl) Send(ctx context.Context, req *dto.SendOtpRequest) error {
	exists, err := s.Repos.Users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	switch req.Type {
	case models.OtpKindRegister:
		if exists {
			return apperrors.ErrEmailTaken
		}
	case models.OtpKindPasswordReset:
		if !exists {
			return apperrors.ErrEmailUnknown
		}
	default:
		return apperrors.NewBadRequestError("Invalid type")
	}

	otp, err := s.issue(ctx, req.Email, req.Type, "")
	if err != nil {
		return err
	}
	if err := s.Mailer.SendOTP(ctx, otp.Email, otp.Code, s.Config.Otp.TTL.Duration); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// SendIPReset mails a code and a one-time login link that lets a user bind a new device.
func (s *OtpServiceImpl) SendIPReset(ctx context.Context, req *dto.SendIPResetRequest) error {
	exists, err := s.Repos.Users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !exists {
		return apperrors.ErrEmailUnknown
	}

	token, err := auth.GenerateLinkToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	link := s.Config.Otp.LinkBaseURL + token

	otp, err := s.issue(ctx, req.Email, models.OtpKindIPReset, link)
	if err != nil {
		return err
	}
	if err := s.Mailer.SendIPResetOTP(ctx, otp.Email, otp.Code, s.Config.Otp.TTL.Duration); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.Mailer.SendPasswordLink(ctx, otp.Email, link, s.Config.Otp.TTL.Duration); err != nil {
		logger.CtxWithError(ctx, "ip reset link mail failed", err, "email", otp.Email)
	}
	return nil
}

// issue replaces any pending code for (email, kind) and re-arms its cleanup.
func (s *OtpServiceImpl) issue(ctx context.Context, email string, kind models.OtpKind, link string) (*models.Otp, error) {
	code, err := auth.GenerateOTP()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	otp, err := s.Repos.Otps.Upsert(ctx, &models.Otp{
		Email:  email,
		Kind:   kind,
		Code:   code,
		Link:   link,
		Expiry: s.now().Add(s.Config.Otp.TTL.Duration),
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.Workers.Otps.Schedule(otp)

	logger.CtxInfo(ctx, "otp issued", "otp_id", otp.ID, "kind", kind)
	return otp, nil
}

func (s *OtpServiceImpl) Verify(ctx context.Context, req *dto.VerifyOtpRequest) error {
	otp, err := s.Repos.Otps.FindByEmailKind(ctx, req.Email, req.Type)
	if err != nil {
		return translate(err)
	}
	return s.consume(ctx, otp, req.Otp)
}

func (s *OtpServiceImpl) VerifyLink(ctx context.Context, req *dto.VerifyLinkRequest) error {
	otp, err := s.Repos.Otps.FindByLink(ctx, models.OtpKindIPReset, req.Link)
	if err != nil {
		if errors.Is(err, repositories.ErrOtpNotFound) {
			return apperrors.ErrLinkInvalid
		}
		return apperrors.InternalError(err)
	}
	if otp.Expiry.Before(s.now()) {
		return apperrors.ErrLinkInvalid
	}
	return nil
}

// ConfirmIPReset consumes the ip-reset code behind link and binds the account to ip.
func (s *OtpServiceImpl) ConfirmIPReset(ctx context.Context, req *dto.ConfirmIPResetRequest, ip string) error {
	otp, err := s.Repos.Otps.FindByLink(ctx, models.OtpKindIPReset, req.Link)
	if err != nil {
		if errors.Is(err, repositories.ErrOtpNotFound) {
			return apperrors.ErrLinkInvalid
		}
		return apperrors.InternalError(err)
	}
	if err := s.consume(ctx, otp, req.Otp); err != nil {
		return err
	}

	user, err := s.Repos.Users.FindByEmail(ctx, otp.Email)
	if err != nil {
		return translate(err)
	}
	if err := s.Repos.Users.UpdateIPAddress(ctx, user.ID, ip); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "device reset", "user_id", user.ID, "ip", ip)
	return nil
}

func (s *OtpServiceImpl) consume(ctx context.Context, otp *models.Otp, code string) error {
	return consumeOtp(ctx, s.Deps, otp, code)
}

// consumeOtp checks code and expiry and deletes the row on success.
func consumeOtp(ctx context.Context, d *Deps, otp *models.Otp, code string) error {
	if otp.Expiry.Before(d.now()) {
		return apperrors.ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return apperrors.ErrOtpInvalid
	}

	if _, err := d.Repos.Otps.Delete(ctx, otp.ID); err != nil {
		return apperrors.InternalError(err)
	}
	d.Workers.Otps.Cancel(otp.ID)
	return nil
}
