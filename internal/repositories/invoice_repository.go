package repositories

import (
	"context"
	"errors"
	"time"

	"sajilo_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenInvoiceKey identifies the single open invoice a user may hold per purchase.
type OpenInvoiceKey struct {
	UserID        string
	Plan          models.Plan
	BillingCycle  models.BillingCycle
	Price         int64
	PaymentMethod models.PaymentMethod
}

type InvoiceRepository interface {
	// FindOrCreateOpen reuses the pending or failed invoice matching key, giving it the new
	// number and signature, or creates one issued at issuedAt. created reports which happened.
	FindOrCreateOpen(ctx context.Context, key OpenInvoiceKey, number, signature string, issuedAt time.Time) (inv *models.Invoice, created bool, err error)
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	FindOpenByNumber(ctx context.Context, userID string, method models.PaymentMethod, number string) (*models.Invoice, error)

	UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) error
	// MarkPaid moves an open invoice to paid, recording the gateway's transaction code and,
	// when non-empty, its payment reference. It reports false when the invoice is no longer open.
	MarkPaid(ctx context.Context, id, transactionCode, reference string, paidAt time.Time) (bool, error)

	Delete(ctx context.Context, id string) (bool, error)
	// DeleteIfOpenIssuedBefore removes a pending or failed invoice issued at or before cutoff.
	DeleteIfOpenIssuedBefore(ctx context.Context, id string, cutoff time.Time) (bool, error)

	ListOpen(ctx context.Context) ([]models.Invoice, error)
	List(ctx context.Context, page Pagination) ([]models.Invoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) FindOrCreateOpen(ctx context.Context, key OpenInvoiceKey, number, signature string, issuedAt time.Time) (*models.Invoice, bool, error) {
	var (
		invoice models.Invoice
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialise find-or-create per user on the owner row.
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&owner, "id = ?", key.UserID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		err := tx.Where("user_id = ? AND plan = ? AND billing_cycle = ? AND price = ? AND payment_method = ?",
			key.UserID, key.Plan, key.BillingCycle, key.Price, key.PaymentMethod).
			Where("status IN ?", models.OpenInvoiceStatuses).
			First(&invoice).Error
		switch {
		case err == nil:
			invoice.InvoiceNumber = number
			invoice.Signature = signature
			return tx.Model(&invoice).Updates(map[string]interface{}{
				"invoice_number": number,
				"signature":      signature,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			invoice = models.Invoice{
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
			created = true
			return tx.Create(&invoice).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return &invoice, created, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrInvoiceNotFound)
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindOpenByNumber(ctx context.Context, userID string, method models.PaymentMethod, number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("invoice_number = ? AND user_id = ? AND payment_method = ?", number, userID, method).
		Where("status IN ?", models.OpenInvoiceStatuses).
		First(&invoice).Error
	if err != nil {
		return nil, notFound(err, ErrInvoiceNotFound)
	}
	return &invoice, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id, transactionCode, reference string, paidAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":           models.InvoiceStatusPaid,
		"transaction_code": transactionCode,
		"issued_date":      paidAt,
	}
	if reference != "" {
		updates["signature"] = reference
	}
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status IN ?", id, models.OpenInvoiceStatuses).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	return result.RowsAffected > 0, result.Error
}

func (r *invoiceRepository) DeleteIfOpenIssuedBefore(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status IN ? AND issued_date <= ?", id, models.OpenInvoiceStatuses, cutoff).
		Delete(&models.Invoice{})
	return result.RowsAffected > 0, result.Error
}

func (r *invoiceRepository) ListOpen(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Where("status IN ?", models.OpenInvoiceStatuses).Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) List(ctx context.Context, page Pagination) ([]models.Invoice, int64, error) {
	var (
		invoices []models.Invoice
		total    int64
	)
	db := r.db.WithContext(ctx).Model(&models.Invoice{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit()).Find(&invoices).Error
	return invoices, total, err
}
