package models

type UserStatus string
type UserRole string
type Plan string
type BillingCycle string
type SubscriptionStatus string
type SessionStatus string
type OtpKind string
type InvoiceStatus string
type PaymentMethod string
type TicketStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	PlanFree    Plan = "free"
	PlanRegular Plan = "regular"
	PlanPro     Plan = "pro"

	BillingCycleNone    BillingCycle = "none"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"

	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	SessionStatusActive   SessionStatus = "active"
	SessionStatusInactive SessionStatus = "inactive"
	SessionStatusExpired  SessionStatus = "expired"

	OtpKindRegister      OtpKind = "register"
	OtpKindPasswordReset OtpKind = "password-reset"
	OtpKindIPReset       OtpKind = "ip-reset"

	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusFailed   InvoiceStatus = "failed"
	InvoiceStatusRefunded InvoiceStatus = "refunded"

	PaymentMethodEsewa  PaymentMethod = "esewa"
	PaymentMethodKhalti PaymentMethod = "khalti"

	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsPaid reports whether the plan carries a subscription window.
func (p Plan) IsPaid() bool {
	return p == PlanRegular || p == PlanPro
}

// QueryQuota is the monthly query allowance of a paid plan.
func (p Plan) QueryQuota() (int, bool) {
	switch p {
	case PlanRegular:
		return 100, true
	case PlanPro:
		return 200, true
	}
	return 0, false
}

// IsLive reports whether the subscription still grants access until planEndDate.
func (s SubscriptionStatus) IsLive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusCancelled
}

// IsOpen reports whether the invoice is still awaiting a successful payment.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusFailed
}

var OpenInvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusFailed}
