package dto

import (
	"encoding/json"
	"time"
)

// RegisterRequest creates a free account bound to the caller's IP.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the tokens a handler turns into a body and cookies.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message,omitempty"`
}

// ResetPasswordRequest carries the password-reset code mailed by /otp/send.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Otp             string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UpdateProfileRequest changes email and/or password; the current password is always required.
type UpdateProfileRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=8"`
}

// AdminLoginRequest accepts key as a JSON number or numeric string.
type AdminLoginRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Key      json.Number `json:"key" validate:"required"`
	IP       string      `json:"ip" validate:"omitempty,ip"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
