package memory

import (
	"context"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
)

type sessionRepo Store

func (r *sessionRepo) store() *Store { return (*Store)(r) }

func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (r *sessionRepo) find(match func(*models.Session) bool) (*models.Session, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if match(sess) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	return r.find(func(s *models.Session) bool { return s.ID == id })
}

func (r *sessionRepo) FindByRefreshToken(ctx context.Context, token string) (*models.Session, error) {
	return r.find(func(s *models.Session) bool { return s.RefreshToken == token })
}

func (r *sessionRepo) FindActiveByDevice(ctx context.Context, userID, ip, userAgent string) (*models.Session, error) {
	return r.find(func(s *models.Session) bool {
		return s.UserID == userID && s.IPAddress == ip && s.UserAgent == userAgent && s.Status == models.SessionStatusActive
	})
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	sess.Status = status
	sess.UpdatedAt = s.now()
	return nil
}

func (r *sessionRepo) ExpireIfActive(ctx context.Context, id string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Status != models.SessionStatusActive {
		return false, nil
	}
	sess.Status = models.SessionStatusExpired
	s.record("sessions.ExpireIfActive")
	return true, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false, nil
	}
	delete(s.sessions, id)
	s.record("sessions.Delete")
	return true, nil
}

func (r *sessionRepo) DeleteStaleForUser(ctx context.Context, userID string, now time.Time) ([]string, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, sess := range s.sessions {
		if sess.UserID == userID && (!sess.ExpiresAt.After(now) || sess.Status == models.SessionStatusExpired) {
			ids = append(ids, id)
			delete(s.sessions, id)
		}
	}
	return ids, nil
}

func (r *sessionRepo) ListActive(ctx context.Context) ([]models.Session, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.Status == models.SessionStatusActive {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (r *sessionRepo) List(ctx context.Context, page repositories.Pagination) ([]models.Session, int64, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, *sess)
	}
	newestFirst(all, func(x models.Session) time.Time { return x.CreatedAt })
	return paginate(all, page), int64(len(all)), nil
}
