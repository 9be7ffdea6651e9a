package repositories

import (
	"context"
	"time"

	"sajilo_backend/internal/models"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	// FindActiveByDevice returns the active session for (userID, ip, userAgent), if any.
	FindActiveByDevice(ctx context.Context, userID, ip, userAgent string) (*models.Session, error)

	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
	// ExpireIfActive flips an active session to expired. Other statuses are left alone.
	ExpireIfActive(ctx context.Context, id string) (bool, error)

	// Delete removes a session; deleting a missing row is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteStaleForUser removes the user's sessions that are expired by status or by time,
	// returning the removed ids.
	DeleteStaleForUser(ctx context.Context, userID string, now time.Time) ([]string, error)

	ListActive(ctx context.Context) ([]models.Session, error)
	List(ctx context.Context, page Pagination) ([]models.Session, int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (r *sessionRepository) FindByRefreshToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", token).First(&session).Error; err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (r *sessionRepository) FindActiveByDevice(ctx context.Context, userID, ip, userAgent string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ip_address = ? AND user_agent = ? AND status = ?", userID, ip, userAgent, models.SessionStatusActive).
		First(&session).Error
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) ExpireIfActive(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND status = ?", id, models.SessionStatusActive).
		Update("status", models.SessionStatusExpired)
	return result.RowsAffected > 0, result.Error
}

func (r *sessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	return result.RowsAffected > 0, result.Error
}

func (r *sessionRepository) DeleteStaleForUser(ctx context.Context, userID string, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&models.Session{}).
			Where("user_id = ?", userID).
			Where(tx.Where("expires_at <= ?", now).Or("status = ?", models.SessionStatusExpired))
		if err := stale.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&models.Session{}).Error
	})
	return ids, err
}

func (r *sessionRepository) ListActive(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).Where("status = ?", models.SessionStatusActive).Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) List(ctx context.Context, page Pagination) ([]models.Session, int64, error) {
	var (
		sessions []models.Session
		total    int64
	)
	db := r.db.WithContext(ctx).Model(&models.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit()).Find(&sessions).Error
	return sessions, total, err
}
