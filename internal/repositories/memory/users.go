package memory

import (
	"context"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"
)

type userRepo Store

func (r *userRepo) store() *Store { return (*Store)(r) }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepo) ExistsByIP(ctx context.Context, ip string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.IPAddress == ip {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) UpdatePlan(ctx context.Context, user *models.User) error {
	err := r.update(user.ID, func(u *models.User) {
		u.Plan = user.Plan
		u.BillingCycle = user.BillingCycle
		u.SubscriptionStatus = user.SubscriptionStatus
		u.PlanStartDate = user.PlanStartDate
		u.PlanEndDate = user.PlanEndDate
		u.QueryLimit = user.QueryLimit
	})
	if err == nil {
		r.store().record("users.UpdatePlan")
	}
	return err
}

func (r *userRepo) UpdateEmail(ctx context.Context, id, email string) error {
	return r.update(id, func(u *models.User) { u.Email = email })
}

func (r *userRepo) update(id string, fn func(u *models.User)) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = s.now()
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepo) UpdateIPAddress(ctx context.Context, id, ip string) error {
	return r.update(id, func(u *models.User) { u.IPAddress = ip })
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LastLogIn = &at })
}

func (r *userRepo) SetSubscriptionStatus(ctx context.Context, id string, status models.SubscriptionStatus) error {
	return r.update(id, func(u *models.User) { u.SubscriptionStatus = status })
}

func (r *userRepo) ExpireSubscriptionIfLapsed(ctx context.Context, id string, now time.Time) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.SubscriptionLapsed(now) {
		return false, nil
	}
	u.SubscriptionStatus = models.SubscriptionStatusExpired
	s.record("users.ExpireSubscriptionIfLapsed")
	return true, nil
}

func (r *userRepo) ListUnexpiredPaid(ctx context.Context) ([]models.User, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.Plan.IsPaid() && u.SubscriptionStatus != models.SubscriptionStatusExpired && u.PlanEndDate != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *userRepo) ResetUsedQuery(ctx context.Context) (int64, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		u.UsedQuery = 0
	}
	s.record("users.ResetUsedQuery")
	return int64(len(s.users)), nil
}

type adminRepo Store

func (r *adminRepo) store() *Store { return (*Store)(r) }

func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	cp := *admin
	s.admins[admin.ID] = &cp
	return nil
}

func (r *adminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, repositories.ErrAdminNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrAdminNotFound
}

func (r *adminRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *adminRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.admins[id]; ok {
		a.LastLogIn = &at
	}
	return nil
}
