package apperrors

type ErrorCode string

const (
	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Business logic
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Auth
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeNewDevice          ErrorCode = "NEW_DEVICE"

	// OTP
	CodeOtpInvalid ErrorCode = "OTP_INVALID"
	CodeOtpExpired ErrorCode = "OTP_EXPIRED"

	// Payments and subscriptions
	CodePaymentFailed        ErrorCode = "PAYMENT_FAILED"
	CodeInvalidPlan          ErrorCode = "INVALID_PLAN"
	CodeInvalidPrice         ErrorCode = "INVALID_PRICE"
	CodeNoActiveSubscription ErrorCode = "NO_ACTIVE_SUBSCRIPTION"
)
