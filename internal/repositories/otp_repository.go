package repositories

import (
	"context"
	"time"

	"sajilo_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OtpRepository interface {
	// Upsert creates the OTP for (email, kind) or replaces code, link and expiry of the existing one.
	// The returned row keeps the id of the replaced row.
	Upsert(ctx context.Context, otp *models.Otp) (*models.Otp, error)
	FindByID(ctx context.Context, id string) (*models.Otp, error)
	FindByEmailKind(ctx context.Context, email string, kind models.OtpKind) (*models.Otp, error)
	FindByLink(ctx context.Context, kind models.OtpKind, link string) (*models.Otp, error)
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteIfExpiredBefore removes the row only if its expiry is at or before cutoff.
	DeleteIfExpiredBefore(ctx context.Context, id string, cutoff time.Time) (bool, error)
	ListAll(ctx context.Context) ([]models.Otp, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Upsert(ctx context.Context, otp *models.Otp) (*models.Otp, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "link", "expiry", "updated_at"}),
	}).Create(otp).Error
	if err != nil {
		return nil, err
	}
	return r.FindByEmailKind(ctx, otp.Email, otp.Kind)
}

func (r *otpRepository) FindByID(ctx context.Context, id string) (*models.Otp, error) {
	var otp models.Otp
	if err := r.db.WithContext(ctx).First(&otp, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrOtpNotFound)
	}
	return &otp, nil
}

func (r *otpRepository) FindByEmailKind(ctx context.Context, email string, kind models.OtpKind) (*models.Otp, error) {
	var otp models.Otp
	if err := r.db.WithContext(ctx).Where("email = ? AND type = ?", email, kind).First(&otp).Error; err != nil {
		return nil, notFound(err, ErrOtpNotFound)
	}
	return &otp, nil
}

func (r *otpRepository) FindByLink(ctx context.Context, kind models.OtpKind, link string) (*models.Otp, error) {
	var otp models.Otp
	if err := r.db.WithContext(ctx).Where("type = ? AND link = ?", kind, link).First(&otp).Error; err != nil {
		return nil, notFound(err, ErrOtpNotFound)
	}
	return &otp, nil
}

func (r *otpRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Otp{})
	return result.RowsAffected > 0, result.Error
}

func (r *otpRepository) DeleteIfExpiredBefore(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND expiry <= ?", id, cutoff).Delete(&models.Otp{})
	return result.RowsAffected > 0, result.Error
}

func (r *otpRepository) ListAll(ctx context.Context) ([]models.Otp, error) {
	var otps []models.Otp
	err := r.db.WithContext(ctx).Find(&otps).Error
	return otps, err
}
