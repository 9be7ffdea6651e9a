package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/payment"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"
)

// PlanPrices is the price list in NPR per plan and billing cycle.
var PlanPrices = map[models.Plan]map[models.BillingCycle]int64{
	models.PlanRegular: {
		models.BillingCycleMonthly: 1000,
		models.BillingCycleYearly:  10800,
	},
	models.PlanPro: {
		models.BillingCycleMonthly: 2000,
		models.BillingCycleYearly:  21600,
	},
}

// CheckPrice validates a purchase against the price list.
func CheckPrice(plan models.Plan, cycle models.BillingCycle, price int64) error {
	cycles, ok := PlanPrices[plan]
	if !ok {
		return apperrors.ErrInvalidPlan
	}
	want, ok := cycles[cycle]
	if !ok {
		return apperrors.ErrInvalidPlan
	}
	if price != want {
		return apperrors.ErrInvalidPrice
	}
	return nil
}

type PaymentService interface {
	InitiateEsewa(ctx context.Context, userID string, req *dto.InitiatePaymentRequest) (*dto.EsewaInitiateResponse, error)
	VerifyEsewa(ctx context.Context, userID string, req *dto.EsewaVerifyRequest) (*dto.VerifyPaymentResponse, error)
	InitiateKhalti(ctx context.Context, userID string, req *dto.InitiatePaymentRequest) (*dto.KhaltiInitiateResponse, error)
	VerifyKhalti(ctx context.Context, userID string, req *dto.KhaltiVerifyRequest) (*dto.VerifyPaymentResponse, error)
}

type PaymentServiceImpl struct {
	*Deps
	subscriptions SubscriptionService
}

func NewPaymentService(d *Deps, subscriptions SubscriptionService) PaymentService {
	return &PaymentServiceImpl{Deps: d, subscriptions: subscriptions}
}

func (s *PaymentServiceImpl) InitiateEsewa(ctx context.Context, userID string, req *dto.InitiatePaymentRequest) (*dto.EsewaInitiateResponse, error) {
	if err := s.checkPurchase(ctx, userID, req); err != nil {
		return nil, err
	}

	number := auth.GenerateInvoiceNumber()
	signature := s.Esewa.Sign(req.Price, number)

	invoice, err := s.openInvoice(ctx, userID, models.PaymentMethodEsewa, req, number, signature)
	if err != nil {
		return nil, err
	}

	return &dto.EsewaInitiateResponse{
		Invoice:     dto.InvoiceSummary{Price: invoice.Price, InvoiceNumber: invoice.InvoiceNumber},
		Signature:   signature,
		ProductCode: s.Esewa.ProductCode(),
	}, nil
}

func (s *PaymentServiceImpl) InitiateKhalti(ctx context.Context, userID string, req *dto.InitiatePaymentRequest) (*dto.KhaltiInitiateResponse, error) {
	if err := s.checkPurchase(ctx, userID, req); err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}

	number := auth.GenerateInvoiceNumber()
	invoice, err := s.openInvoice(ctx, userID, models.PaymentMethodKhalti, req, number, "")
	if err != nil {
		return nil, err
	}

	khaltiCfg := s.Config.Payment.Khalti
	resp, err := s.Khalti.Initiate(ctx, payment.KhaltiInitiateRequest{
		ReturnURL:         khaltiCfg.ReturnURL,
		WebsiteURL:        khaltiCfg.WebsiteURL,
		Amount:            invoice.Price * 100,
		PurchaseOrderID:   invoice.InvoiceNumber,
		PurchaseOrderName: fmt.Sprintf("%s-%s", invoice.Plan, invoice.BillingCycle),
		CustomerInfo:      payment.KhaltiCustomer{Name: user.FullName, Email: user.Email},
	})
	if err != nil {
		s.markFailed(ctx, invoice)
		return nil, apperrors.UpstreamError(err, "khalti", "Khalti API error")
	}

	return &dto.KhaltiInitiateResponse{PaymentURL: resp.PaymentURL}, nil
}

func (s *PaymentServiceImpl) VerifyEsewa(ctx context.Context, userID string, req *dto.EsewaVerifyRequest) (*dto.VerifyPaymentResponse, error) {
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}

	cb, err := s.Esewa.DecodeCallback(req.EsewaData)
	if err != nil {
		if errors.Is(err, payment.ErrNotCompleted) {
			return nil, apperrors.ErrPaymentNotCompleted.WithError(err)
		}
		return nil, apperrors.NewBadRequestError("Invalid eSewa data").WithError(err)
	}

	invoice, err := s.findOpenInvoice(ctx, userID, models.PaymentMethodEsewa, cb.TransactionUUID)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(cb.Amount(), 64)
	if err != nil || int64(amount) != invoice.Price {
		s.markFailed(ctx, invoice)
		return nil, apperrors.ErrPaymentNotCompleted.WithDetails(map[string]string{"total_amount": cb.TotalAmount})
	}

	if _, err := s.Esewa.CheckStatus(ctx, strconv.FormatInt(invoice.Price, 10), invoice.InvoiceNumber); err != nil {
		s.markFailed(ctx, invoice)
		return nil, apperrors.UpstreamError(err, "esewa", "Payment verification failed")
	}

	return s.complete(ctx, user, invoice, cb.TransactionCode, "")
}

func (s *PaymentServiceImpl) VerifyKhalti(ctx context.Context, userID string, req *dto.KhaltiVerifyRequest) (*dto.VerifyPaymentResponse, error) {
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}

	cb := req.KhaltiData
	if err := cb.Validate(); err != nil {
		if errors.Is(err, payment.ErrNotCompleted) {
			return nil, apperrors.ErrPaymentNotCompleted.WithError(err)
		}
		return nil, apperrors.NewBadRequestError("Invalid Khalti data").WithError(err)
	}

	invoice, err := s.findOpenInvoice(ctx, userID, models.PaymentMethodKhalti, cb.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	lookup, err := s.Khalti.Lookup(ctx, cb.Pidx)
	if err != nil {
		s.markFailed(ctx, invoice)
		return nil, apperrors.UpstreamError(err, "khalti", "Payment verification failed")
	}
	if lookup.TotalAmount != 0 && lookup.TotalAmount != invoice.Price*100 {
		s.markFailed(ctx, invoice)
		return nil, apperrors.ErrPaymentNotCompleted.WithDetails(map[string]int64{"total_amount": lookup.TotalAmount})
	}

	transactionID := lookup.TransactionID
	if transactionID == "" {
		transactionID = cb.TransactionID
	}
	return s.complete(ctx, user, invoice, transactionID, cb.Pidx)
}

// checkPurchase validates the purchase before any invoice is touched.
func (s *PaymentServiceImpl) checkPurchase(ctx context.Context, userID string, req *dto.InitiatePaymentRequest) error {
	if _, err := findUser(ctx, s.Deps, userID); err != nil {
		return err
	}
	if req.NonRefundAgreement != "yes" {
		return apperrors.ErrNonRefundAgreement
	}
	return CheckPrice(req.Plan, req.BillingCycle, req.Price)
}

func (s *PaymentServiceImpl) openInvoice(ctx context.Context, userID string, method models.PaymentMethod, req *dto.InitiatePaymentRequest, number, signature string) (*models.Invoice, error) {
	key := repositories.OpenInvoiceKey{
		UserID:        userID,
		Plan:          req.Plan,
		BillingCycle:  req.BillingCycle,
		Price:         req.Price,
		PaymentMethod: method,
	}
	invoice, created, err := s.Repos.Invoices.FindOrCreateOpen(ctx, key, number, signature, s.now())
	if err != nil {
		return nil, translate(err)
	}
	s.Workers.Invoices.Schedule(invoice)

	logger.CtxInfo(ctx, "invoice opened",
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"method", method,
		"created", created,
	)
	return invoice, nil
}

func (s *PaymentServiceImpl) findOpenInvoice(ctx context.Context, userID string, method models.PaymentMethod, number string) (*models.Invoice, error) {
	invoice, err := s.Repos.Invoices.FindOpenByNumber(ctx, userID, method, number)
	if err != nil {
		return nil, translate(err)
	}
	return invoice, nil
}

// markFailed records a failed attempt durably so cleanup still removes the invoice.
func (s *PaymentServiceImpl) markFailed(ctx context.Context, invoice *models.Invoice) {
	if err := s.Repos.Invoices.UpdateStatus(ctx, invoice.ID, models.InvoiceStatusFailed); err != nil {
		logger.CtxWithError(ctx, "failed to mark invoice failed", err, "invoice_id", invoice.ID)
		return
	}
	invoice.Status = models.InvoiceStatusFailed
	s.Workers.Invoices.Schedule(invoice)
	logger.CtxWarn(ctx, "payment failed", "invoice_id", invoice.ID, "method", invoice.PaymentMethod)
}

func (s *PaymentServiceImpl) complete(ctx context.Context, user *models.User, invoice *models.Invoice, transactionCode, reference string) (*dto.VerifyPaymentResponse, error) {
	if _, ok := invoice.Plan.QueryQuota(); !ok {
		return nil, apperrors.ErrInvalidPlan
	}
	if invoice.BillingCycle != models.BillingCycleMonthly && invoice.BillingCycle != models.BillingCycleYearly {
		return nil, apperrors.ErrInvalidPlan
	}

	now := s.now()
	paid, err := s.Repos.Invoices.MarkPaid(ctx, invoice.ID, transactionCode, reference, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !paid {
		// A concurrent verification or the cleanup job got there first.
		return nil, apperrors.ErrInvoiceNotFound
	}
	s.Workers.Invoices.Cancel(invoice.ID)

	invoice.Status = models.InvoiceStatusPaid
	invoice.TransactionCode = transactionCode
	invoice.IssuedDate = now
	if reference != "" {
		invoice.Signature = reference
	}

	user, err = s.subscriptions.ApplyPayment(ctx, user.ID, invoice.Plan, invoice.BillingCycle)
	if err != nil {
		// The invoice is already paid; it has to be reconciled by hand.
		logger.CtxWithError(ctx, "paid invoice has no plan applied", err,
			"invoice_id", invoice.ID,
			"invoice_number", invoice.InvoiceNumber,
			"user_id", invoice.UserID,
			"plan", invoice.Plan,
			"billing_cycle", invoice.BillingCycle,
		)
		return nil, err
	}

	mailUser, mailInvoice := *user, *invoice
	s.async(ctx, func(ctx context.Context) {
		if err := s.Mailer.SendInvoice(ctx, &mailUser, &mailInvoice); err != nil {
			logger.CtxWithError(ctx, "invoice mail not delivered", err, "invoice_id", mailInvoice.ID)
		}
	})

	return &dto.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified successfully",
		Invoice: invoice,
	}, nil
}
