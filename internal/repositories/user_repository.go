package repositories

import (
	"context"
	"time"

	"sajilo_backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByIP(ctx context.Context, ip string) (bool, error)

	// UpdatePlan writes only the subscription columns of user.
	UpdatePlan(ctx context.Context, user *models.User) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateIPAddress(ctx context.Context, id, ip string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	SetSubscriptionStatus(ctx context.Context, id string, status models.SubscriptionStatus) error

	// ExpireSubscriptionIfLapsed marks a paid, lapsed subscription expired. It is a no-op
	// for users whose planEndDate is after now, whose plan is free, or who are already expired.
	ExpireSubscriptionIfLapsed(ctx context.Context, id string, now time.Time) (bool, error)
	// ListUnexpiredPaid returns users on a paid plan whose subscription is not yet expired.
	ListUnexpiredPaid(ctx context.Context) ([]models.User, error)
	// ResetUsedQuery zeroes the monthly query counter of every user.
	ResetUsedQuery(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByIP(ctx context.Context, ip string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("ip_address = ?", ip).Count(&count).Error
	return count > 0, err
}

var planColumns = []string{"plan", "billing_cycle", "subscription_status", "plan_start_date", "plan_end_date", "query_limit", "updated_at"}

func (r *userRepository) UpdatePlan(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select(planColumns).
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateEmail(ctx context.Context, id, email string) error {
	return r.updateColumn(ctx, id, "email", email)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *userRepository) UpdateIPAddress(ctx context.Context, id, ip string) error {
	return r.updateColumn(ctx, id, "ip_address", ip)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateColumn(ctx, id, "last_log_in", at)
}

func (r *userRepository) SetSubscriptionStatus(ctx context.Context, id string, status models.SubscriptionStatus) error {
	return r.updateColumn(ctx, id, "subscription_status", status)
}

func (r *userRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ExpireSubscriptionIfLapsed(ctx context.Context, id string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Where("plan IN ?", []models.Plan{models.PlanRegular, models.PlanPro}).
		Where("subscription_status <> ?", models.SubscriptionStatusExpired).
		Where("plan_end_date IS NOT NULL AND plan_end_date <= ?", now).
		Update("subscription_status", models.SubscriptionStatusExpired)
	return result.RowsAffected > 0, result.Error
}

func (r *userRepository) ListUnexpiredPaid(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("plan IN ?", []models.Plan{models.PlanRegular, models.PlanPro}).
		Where("subscription_status <> ?", models.SubscriptionStatusExpired).
		Where("plan_end_date IS NOT NULL").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ResetUsedQuery(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Update("used_query", 0)
	return result.RowsAffected, result.Error
}
