package services

import (
	"context"
	"errors"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/pkg/apperrors"
)

func findUser(ctx context.Context, d *Deps, id string) (*models.User, error) {
	user, err := d.Repos.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// translate maps repository sentinels onto their API errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrAdminNotFound):
		return apperrors.ErrAdminNotFound
	case errors.Is(err, repositories.ErrSessionNotFound):
		return apperrors.ErrSessionNotFound
	case errors.Is(err, repositories.ErrInvoiceNotFound):
		return apperrors.ErrInvoiceNotFound
	case errors.Is(err, repositories.ErrTicketNotFound):
		return apperrors.ErrTicketNotFound
	case errors.Is(err, repositories.ErrOtpNotFound):
		return apperrors.ErrOtpInvalid
	}
	return apperrors.InternalError(err)
}

const adminPageSize = 10

func page(n int) repositories.Pagination {
	return repositories.Pagination{Page: n, PageSize: adminPageSize}
}
