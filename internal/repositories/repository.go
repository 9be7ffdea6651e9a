package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrOtpNotFound     = errors.New("otp not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrTicketNotFound  = errors.New("ticket not found")
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.normalized()
	return (n.Page - 1) * n.PageSize
}

func (p Pagination) Limit() int {
	return p.normalized().PageSize
}

// Repositories bundles every repository the services need.
type Repositories struct {
	Users    UserRepository
	Admins   AdminRepository
	Sessions SessionRepository
	Otps     OtpRepository
	Invoices InvoiceRepository
	Tickets  TicketRepository
}

// NewGorm wires gorm-backed repositories on db.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Admins:   NewAdminRepository(db),
		Sessions: NewSessionRepository(db),
		Otps:     NewOtpRepository(db),
		Invoices: NewInvoiceRepository(db),
		Tickets:  NewTicketRepository(db),
	}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
