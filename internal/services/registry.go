package services

import (
	"context"
	"time"

	"sajilo_backend/internal/auth"
	"sajilo_backend/internal/config"
	"sajilo_backend/internal/email"
	"sajilo_backend/internal/payment"
	"sajilo_backend/internal/repositories"
	"sajilo_backend/internal/scheduler"
	"sajilo_backend/internal/workers"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Repos       *repositories.Repositories
	Workers     *workers.Registry
	Tokens      *auth.TokenManager
	AdminTokens *auth.TokenManager
	Mailer      email.Mailer
	Esewa       payment.Esewa
	Khalti      payment.Khalti
	Clock       scheduler.Clock
	Config      *config.Config

	// Go runs fire-and-forget work such as invoice mails. Nil means a new goroutine.
	Go func(func())
}

func (d *Deps) now() time.Time {
	return d.Clock.Now()
}

func (d *Deps) async(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	if d.Go != nil {
		d.Go(func() { fn(detached) })
		return
	}
	go fn(detached)
}

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService         AuthService
	AdminAuthService    AdminAuthService
	OtpService          OtpService
	PaymentService      PaymentService
	SubscriptionService SubscriptionService
	SessionService      SessionService
	InvoiceService      InvoiceService
	TicketService       TicketService
}

func NewServiceContainer(d *Deps) *ServiceContainer {
	subscriptions := NewSubscriptionService(d)
	return &ServiceContainer{
		AuthService:         NewAuthService(d),
		AdminAuthService:    NewAdminAuthService(d),
		OtpService:          NewOtpService(d),
		PaymentService:      NewPaymentService(d, subscriptions),
		SubscriptionService: subscriptions,
		SessionService:      NewSessionService(d),
		InvoiceService:      NewInvoiceService(d),
		TicketService:       NewTicketService(d),
	}
}
