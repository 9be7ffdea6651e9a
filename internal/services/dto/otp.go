package dto

import "sajilo_backend/internal/models"

type SendOtpRequest struct {
	Email string         `json:"email" validate:"required,email"`
	Type  models.OtpKind `json:"type" validate:"required,oneof=register password-reset"`
}

type VerifyOtpRequest struct {
	Email string         `json:"email" validate:"required,email"`
	Otp   string         `json:"otp" validate:"required,len=6,numeric"`
	Type  models.OtpKind `json:"type" validate:"required,oneof=register password-reset"`
}

type SendIPResetRequest struct {
	Email string         `json:"email" validate:"required,email"`
	Type  models.OtpKind `json:"type" validate:"required,oneof=ip-reset"`
}

type VerifyLinkRequest struct {
	Type models.OtpKind `json:"type" validate:"required,oneof=ip-reset"`
	Link string         `json:"link" validate:"required"`
}

// ConfirmIPResetRequest completes the new-device flow started by an admin.
type ConfirmIPResetRequest struct {
	Link string `json:"link" validate:"required"`
	Otp  string `json:"otp" validate:"required,len=6,numeric"`
}

type VerifyLinkResponse struct {
	Valid bool `json:"valid"`
}
