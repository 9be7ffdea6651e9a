package repositories

import (
	"context"

	"sajilo_backend/internal/models"

	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, page Pagination) ([]models.Ticket, int64, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Ticket{})
	return result.RowsAffected > 0, result.Error
}

func (r *ticketRepository) List(ctx context.Context, page Pagination) ([]models.Ticket, int64, error) {
	var (
		tickets []models.Ticket
		total   int64
	)
	db := r.db.WithContext(ctx).Model(&models.Ticket{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit()).Find(&tickets).Error
	return tickets, total, err
}
