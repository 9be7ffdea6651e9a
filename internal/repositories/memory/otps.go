package memory

import (
	"context"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
)

type otpRepo Store

func (r *otpRepo) store() *Store { return (*Store)(r) }

func (r *otpRepo) Upsert(ctx context.Context, otp *models.Otp) (*models.Otp, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.otps {
		if existing.Email == otp.Email && existing.Kind == otp.Kind {
			existing.Code = otp.Code
			existing.Link = otp.Link
			existing.Expiry = otp.Expiry
			existing.UpdatedAt = s.now()
			cp := *existing
			return &cp, nil
		}
	}
	row := *otp
	s.stamp(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	s.otps[row.ID] = &row
	cp := row
	return &cp, nil
}

func (r *otpRepo) find(match func(*models.Otp) bool) (*models.Otp, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.otps {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrOtpNotFound
}

func (r *otpRepo) FindByID(ctx context.Context, id string) (*models.Otp, error) {
	return r.find(func(o *models.Otp) bool { return o.ID == id })
}

func (r *otpRepo) FindByEmailKind(ctx context.Context, email string, kind models.OtpKind) (*models.Otp, error) {
	return r.find(func(o *models.Otp) bool { return o.Email == email && o.Kind == kind })
}

func (r *otpRepo) FindByLink(ctx context.Context, kind models.OtpKind, link string) (*models.Otp, error) {
	return r.find(func(o *models.Otp) bool { return o.Kind == kind && o.Link == link })
}

func (r *otpRepo) Delete(ctx context.Context, id string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.otps[id]; !ok {
		return false, nil
	}
	delete(s.otps, id)
	s.record("otps.Delete")
	return true, nil
}

func (r *otpRepo) DeleteIfExpiredBefore(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.otps[id]
	if !ok || o.Expiry.After(cutoff) {
		return false, nil
	}
	delete(s.otps, id)
	s.record("otps.DeleteIfExpiredBefore")
	return true, nil
}

func (r *otpRepo) ListAll(ctx context.Context) ([]models.Otp, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Otp, 0, len(s.otps))
	for _, o := range s.otps {
		out = append(out, *o)
	}
	return out, nil
}
