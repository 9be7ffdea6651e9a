package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkout struct {
	ID           string `json:"id" validate:"required"`
	Plan         string `json:"plan" validate:"required,is-plan"`
	BillingCycle string `json:"billingCycle" validate:"required,is-billing-cycle"`
	Agreement    string `json:"nonRefundAgreement" validate:"required,is-yes"`
	Email        string `json:"email" validate:"omitempty,email"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	err := v.Validate(&checkout{ID: "u1", Plan: "pro", BillingCycle: "yearly", Agreement: "yes"})
	assert.NoError(t, err)
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&checkout{Plan: "gold", BillingCycle: "weekly", Agreement: "no", Email: "nope"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["id"])
	assert.Equal(t, "Must be one of: regular, pro", vErr.Errors["plan"])
	assert.Equal(t, "Must be one of: monthly, yearly", vErr.Errors["billingCycle"])
	assert.Equal(t, "Must be 'yes'", vErr.Errors["nonRefundAgreement"])
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Contains(t, vErr.Error(), "field 'billingCycle'")
}

func TestStatusRules(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("in-progress", "is-ticket-status"))
	assert.Error(t, v.Var("done", "is-ticket-status"))
	assert.NoError(t, v.Var("expired", "is-session-status"))
	assert.NoError(t, v.Var("refunded", "is-invoice-status"))
	assert.Error(t, v.Var("cash", "is-payment-method"))
	assert.NoError(t, v.Var("ip-reset", "is-otp-kind"))
	assert.NoError(t, v.Var("", "is-otp-kind"))
}
