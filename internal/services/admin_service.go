package services

import (
	"context"

	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"
)

type SessionService interface {
	List(ctx context.Context, pageNum int) (*dto.SessionList, error)
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type SessionServiceImpl struct {
	*Deps
}

func NewSessionService(d *Deps) SessionService {
	return &SessionServiceImpl{Deps: d}
}

func (s *SessionServiceImpl) List(ctx context.Context, pageNum int) (*dto.SessionList, error) {
	p := page(pageNum)
	items, total, err := s.Repos.Sessions.List(ctx, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.SessionList{Sessions: items, Pagination: dto.NewPagination(pageNum, p.Limit(), total)}, nil
}

// UpdateStatus keeps the expiry job in step with the new status.
func (s *SessionServiceImpl) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) (*models.Session, error) {
	if err := s.Repos.Sessions.UpdateStatus(ctx, id, status); err != nil {
		return nil, translate(err)
	}
	session, err := s.Repos.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	s.Workers.Sessions.Schedule(session)

	logger.CtxInfo(ctx, "session status changed", "session_id", id, "status", status)
	return session, nil
}

func (s *SessionServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.Repos.Sessions.Delete(ctx, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	s.Workers.Sessions.Cancel(id)
	if !deleted {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

type InvoiceService interface {
	List(ctx context.Context, pageNum int) (*dto.InvoiceList, error)
	UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) (*models.Invoice, error)
	Delete(ctx context.Context, id string) error
}

type InvoiceServiceImpl struct {
	*Deps
}

func NewInvoiceService(d *Deps) InvoiceService {
	return &InvoiceServiceImpl{Deps: d}
}

func (s *InvoiceServiceImpl) List(ctx context.Context, pageNum int) (*dto.InvoiceList, error) {
	p := page(pageNum)
	items, total, err := s.Repos.Invoices.List(ctx, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.InvoiceList{Invoices: items, Pagination: dto.NewPagination(pageNum, p.Limit(), total)}, nil
}

// UpdateStatus re-runs the cleanup contract: open invoices keep a deletion job, others lose it.
func (s *InvoiceServiceImpl) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	if err := s.Repos.Invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, translate(err)
	}
	invoice, err := s.Repos.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	s.Workers.Invoices.Schedule(invoice)

	logger.CtxInfo(ctx, "invoice status changed", "invoice_id", id, "status", status)
	return invoice, nil
}

func (s *InvoiceServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.Repos.Invoices.Delete(ctx, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	s.Workers.Invoices.Cancel(id)
	if !deleted {
		return apperrors.ErrInvoiceNotFound
	}
	return nil
}

type TicketService interface {
	Create(ctx context.Context, req *dto.CreateTicketRequest) (*models.Ticket, error)
	List(ctx context.Context, pageNum int) (*dto.TicketList, error)
	UpdateStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type TicketServiceImpl struct {
	*Deps
}

func NewTicketService(d *Deps) TicketService {
	return &TicketServiceImpl{Deps: d}
}

func (s *TicketServiceImpl) Create(ctx context.Context, req *dto.CreateTicketRequest) (*models.Ticket, error) {
	ticket := &models.Ticket{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Status:  models.TicketStatusOpen,
	}
	if err := s.Repos.Tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticket, nil
}

func (s *TicketServiceImpl) List(ctx context.Context, pageNum int) (*dto.TicketList, error) {
	p := page(pageNum)
	items, total, err := s.Repos.Tickets.List(ctx, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.TicketList{Tickets: items, Pagination: dto.NewPagination(pageNum, p.Limit(), total)}, nil
}

func (s *TicketServiceImpl) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error) {
	if err := s.Repos.Tickets.UpdateStatus(ctx, id, status); err != nil {
		return nil, translate(err)
	}
	ticket, err := s.Repos.Tickets.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (s *TicketServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.Repos.Tickets.Delete(ctx, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !deleted {
		return apperrors.ErrTicketNotFound
	}
	return nil
}
