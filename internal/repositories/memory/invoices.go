package memory

import (
	"context"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
)

type invoiceRepo Store

func (r *invoiceRepo) store() *Store { return (*Store)(r) }

func (r *invoiceRepo) FindOrCreateOpen(ctx context.Context, key repositories.OpenInvoiceKey, number, signature string, issuedAt time.Time) (*models.Invoice, bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key.UserID]; !ok {
		return nil, false, repositories.ErrUserNotFound
	}
	for _, inv := range s.invoices {
		if inv.UserID == key.UserID && inv.Plan == key.Plan && inv.BillingCycle == key.BillingCycle &&
			inv.Price == key.Price && inv.PaymentMethod == key.PaymentMethod && inv.Status.IsOpen() {
			inv.InvoiceNumber = number
			inv.Signature = signature
			inv.UpdatedAt = s.now()
			cp := *inv
			return &cp, false, nil
		}
	}
	inv := &models.Invoice{
		UserID:        key.UserID,
		InvoiceNumber: number,
		Plan:          key.Plan,
		BillingCycle:  key.BillingCycle,
		Price:         key.Price,
		PaymentMethod: key.PaymentMethod,
		Status:        models.InvoiceStatusPending,
		Signature:     signature,
		IssuedDate:    issuedAt,
	}
	s.stamp(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	s.invoices[inv.ID] = inv
	cp := *inv
	return &cp, true, nil
}

// InsertInvoice stores an invoice as-is, for seeding tests.
func (s *Store) InsertInvoice(inv *models.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	cp := *inv
	s.invoices[inv.ID] = &cp
}

func (r *invoiceRepo) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, repositories.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *invoiceRepo) FindOpenByNumber(ctx context.Context, userID string, method models.PaymentMethod, number string) (*models.Invoice, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.InvoiceNumber == number && inv.UserID == userID && inv.PaymentMethod == method && inv.Status.IsOpen() {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrInvoiceNotFound
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return repositories.ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = s.now()
	return nil
}

func (r *invoiceRepo) MarkPaid(ctx context.Context, id, transactionCode, reference string, paidAt time.Time) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || !inv.Status.IsOpen() {
		return false, nil
	}
	inv.Status = models.InvoiceStatusPaid
	inv.TransactionCode = transactionCode
	if reference != "" {
		inv.Signature = reference
	}
	inv.IssuedDate = paidAt
	return true, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return false, nil
	}
	delete(s.invoices, id)
	s.record("invoices.Delete")
	return true, nil
}

func (r *invoiceRepo) DeleteIfOpenIssuedBefore(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || !inv.Status.IsOpen() || inv.IssuedDate.After(cutoff) {
		return false, nil
	}
	delete(s.invoices, id)
	s.record("invoices.DeleteIfOpenIssuedBefore")
	return true, nil
}

func (r *invoiceRepo) ListOpen(ctx context.Context) ([]models.Invoice, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.Status.IsOpen() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *invoiceRepo) List(ctx context.Context, page repositories.Pagination) ([]models.Invoice, int64, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		all = append(all, *inv)
	}
	newestFirst(all, func(x models.Invoice) time.Time { return x.CreatedAt })
	return paginate(all, page), int64(len(all)), nil
}
