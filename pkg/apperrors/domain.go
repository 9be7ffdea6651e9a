package apperrors

import (
	"net/http"
)

// =========================================================================
// Auth and sessions
// =========================================================================

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
	ErrAccountInactive    = New(CodeForbidden, "auth", "Account is not active", http.StatusForbidden)
	ErrNewDevice          = New(CodeNewDevice, "auth", "Login from a new device is not allowed", http.StatusForbidden)
	ErrIPMismatch         = New(CodeForbidden, "auth", "Request does not come from the session device", http.StatusForbidden)
	ErrInvalidKey         = New(CodeForbidden, "auth", "Invalid admin key", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)
	ErrMissingToken       = New(CodeUnauthorized, "auth", "Authentication required", http.StatusUnauthorized)
	ErrDuplicateDevice    = NewTooManyRequestsError("auth", "Multiple accounts cannot be created from the same device")
	ErrEmailTaken         = New(CodeAlreadyExists, "auth", "Email is already registered", http.StatusConflict)

	ErrSessionNotFound = NewNotFoundError("session", "Session not found")
	ErrSessionInactive = New(CodeForbidden, "session", "Session is not active", http.StatusForbidden)
	ErrSessionExpired  = New(CodeTokenExpired, "session", "Session has expired", http.StatusForbidden)

	ErrUserNotFound  = NewNotFoundError("user", "User not found")
	ErrAdminNotFound = NewNotFoundError("admin", "Admin not found")

	ErrPasswordMismatch = New(CodeValidationFailed, "user", "Passwords do not match", http.StatusBadRequest)
	ErrPasswordReused   = New(CodeValidationFailed, "user", "New password must differ from the current one", http.StatusBadRequest)
	ErrWrongPassword    = New(CodeInvalidCredentials, "user", "Current password is incorrect", http.StatusUnauthorized)
	ErrNoChanges        = New(CodeInvalidOperation, "user", "No changes detected", http.StatusBadRequest)
	ErrEmailUnknown     = New(CodeNotFound, "user", "User with this email doesn't exist", http.StatusBadRequest)
)

// =========================================================================
// OTP
// =========================================================================

var (
	ErrOtpInvalid  = New(CodeOtpInvalid, "otp", "Invalid OTP", http.StatusBadRequest)
	ErrOtpExpired  = New(CodeOtpExpired, "otp", "OTP has expired", http.StatusBadRequest)
	ErrLinkInvalid = New(CodeOtpInvalid, "otp", "Invalid or expired link", http.StatusBadRequest)
)

// =========================================================================
// Payments, invoices, subscriptions
// =========================================================================

var (
	ErrNonRefundAgreement   = New(CodeValidationFailed, "payment", "Non-refund agreement must be accepted", http.StatusBadRequest)
	ErrInvalidPlan          = New(CodeInvalidPlan, "payment", "Invalid plan or billing cycle", http.StatusBadRequest)
	ErrInvalidPrice         = New(CodeInvalidPrice, "payment", "Price does not match the selected plan", http.StatusBadRequest)
	ErrPaymentNotCompleted  = New(CodePaymentFailed, "payment", "Payment was not completed", http.StatusBadRequest)
	ErrInvoiceNotFound      = NewNotFoundError("invoice", "Invoice not found")
	ErrNoActiveSubscription = New(CodeNoActiveSubscription, "subscription", "No active subscription", http.StatusBadRequest)
	ErrAlreadyCancelled     = New(CodeInvalidStatus, "subscription", "Subscription is already cancelled", http.StatusBadRequest)

	ErrTicketNotFound = NewNotFoundError("ticket", "Ticket not found")
)
