package dto

import (
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/payment"
)

type InitiatePaymentRequest struct {
	Plan               models.Plan         `json:"plan" validate:"required,is-plan"`
	BillingCycle       models.BillingCycle `json:"billingCycle" validate:"required,is-billing-cycle"`
	Price              int64               `json:"price" validate:"required,gt=0"`
	NonRefundAgreement string              `json:"nonRefundAgreement" validate:"required"`
}

type InvoiceSummary struct {
	Price         int64  `json:"price"`
	InvoiceNumber string `json:"invoiceNumber"`
}

type EsewaInitiateResponse struct {
	Invoice     InvoiceSummary `json:"invoice"`
	Signature   string         `json:"signature"`
	ProductCode string         `json:"productCode"`
}

type KhaltiInitiateResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

type EsewaVerifyRequest struct {
	EsewaData string `json:"esewaData" validate:"required"`
}

type KhaltiVerifyRequest struct {
	KhaltiData payment.KhaltiCallback `json:"khaltiData"`
}

type VerifyPaymentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Invoice *models.Invoice `json:"invoice,omitempty"`
}
