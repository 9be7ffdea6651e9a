package memory

import (
	"context"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
)

type ticketRepo Store

func (r *ticketRepo) store() *Store { return (*Store)(r) }

func (r *ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	cp := *ticket
	s.tickets[ticket.ID] = &cp
	return nil
}

func (r *ticketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, repositories.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *ticketRepo) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return repositories.ErrTicketNotFound
	}
	t.Status = status
	return nil
}

func (r *ticketRepo) Delete(ctx context.Context, id string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return false, nil
	}
	delete(s.tickets, id)
	return true, nil
}

func (r *ticketRepo) List(ctx context.Context, page repositories.Pagination) ([]models.Ticket, int64, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		all = append(all, *t)
	}
	newestFirst(all, func(x models.Ticket) time.Time { return x.CreatedAt })
	return paginate(all, page), int64(len(all)), nil
}
