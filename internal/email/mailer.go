package email

import (
	"context"
	"fmt"
	"time"

	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
)

// Mailer sends the application's transactional messages.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
	SendIPResetOTP(ctx context.Context, to, code string, ttl time.Duration) error
	SendPasswordLink(ctx context.Context, to, link string, ttl time.Duration) error
	SendInvoice(ctx context.Context, user *models.User, invoice *models.Invoice) error
}

// TemplateMailer renders built-in templates and hands them to a Provider.
type TemplateMailer struct {
	provider Provider
	renderer TemplateRenderer
}

func NewMailer(provider Provider, renderer TemplateRenderer) *TemplateMailer {
	return &TemplateMailer{provider: provider, renderer: renderer}
}

func (m *TemplateMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, "Your verification code", TemplateOTP, TemplateData{
		"Code":    code,
		"Minutes": minutes(ttl),
	})
}

func (m *TemplateMailer) SendIPResetOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, "Confirm your new device", TemplateIPReset, TemplateData{
		"Email":   to,
		"Code":    code,
		"Minutes": minutes(ttl),
	})
}

func (m *TemplateMailer) SendPasswordLink(ctx context.Context, to, link string, ttl time.Duration) error {
	return m.send(ctx, to, "Reset your password", TemplatePasswordLink, TemplateData{
		"Link":    link,
		"Minutes": minutes(ttl),
	})
}

func (m *TemplateMailer) SendInvoice(ctx context.Context, user *models.User, invoice *models.Invoice) error {
	return m.send(ctx, user.Email, "Invoice "+invoice.InvoiceNumber, TemplateInvoice, TemplateData{
		"Name":            user.FullName,
		"InvoiceNumber":   invoice.InvoiceNumber,
		"Plan":            string(invoice.Plan),
		"BillingCycle":    string(invoice.BillingCycle),
		"Price":           invoice.Price,
		"PaymentMethod":   string(invoice.PaymentMethod),
		"TransactionCode": invoice.TransactionCode,
		"IssuedDate":      invoice.IssuedDate.Format("2006-01-02 15:04"),
	})
}

func (m *TemplateMailer) send(ctx context.Context, to, subject, tpl string, data TemplateData) error {
	body, err := m.renderer.Render(tpl, data)
	if err != nil {
		return err
	}
	if err := m.provider.Send(ctx, &Email{To: []string{to}, Subject: subject, HTMLBody: body}); err != nil {
		logger.CtxWithError(ctx, "email delivery failed", err, "template", tpl, "to", to)
		return fmt.Errorf("send %s email: %w", tpl, err)
	}
	logger.CtxInfo(ctx, "email sent", "template", tpl, "to", to)
	return nil
}

func minutes(d time.Duration) int {
	m := int(d / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}
