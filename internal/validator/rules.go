package validator

import (
	"log"

	"sajilo_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-plan", oneOf(models.PlanRegular, models.PlanPro))
	mustRegister("is-billing-cycle", oneOf(models.BillingCycleMonthly, models.BillingCycleYearly))
	mustRegister("is-otp-kind", oneOf(models.OtpKindRegister, models.OtpKindPasswordReset, models.OtpKindIPReset))
	mustRegister("is-session-status", oneOf(models.SessionStatusActive, models.SessionStatusInactive, models.SessionStatusExpired))
	mustRegister("is-invoice-status", oneOf(
		models.InvoiceStatusPending, models.InvoiceStatusPaid, models.InvoiceStatusFailed, models.InvoiceStatusRefunded,
	))
	mustRegister("is-ticket-status", oneOf(models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusClosed))
	mustRegister("is-payment-method", oneOf(models.PaymentMethodEsewa, models.PaymentMethodKhalti))
	mustRegister("is-yes", oneOf("yes"))
}

// oneOf accepts empty values; presence is left to 'required'.
func oneOf[T ~string](allowed ...T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[string(a)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := set[value]
		return ok
	}
}
