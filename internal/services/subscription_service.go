package services

import (
	"context"
	"time"

	"sajilo_backend/internal/logger"
	"sajilo_backend/internal/models"
	"sajilo_backend/pkg/apperrors"
)

// Renewal is the plan window produced by a confirmed payment.
type Renewal struct {
	Extended   bool
	StartDate  time.Time
	EndDate    time.Time
	QueryLimit int
}

// ComputeRenewal extends a live subscription of the same plan and cycle from its current end,
// and restarts the window from now in every other case.
func ComputeRenewal(user *models.User, plan models.Plan, cycle models.BillingCycle, now time.Time) (Renewal, error) {
	quota, ok := plan.QueryQuota()
	if !ok {
		return Renewal{}, apperrors.ErrInvalidPlan
	}

	samePlan := user.Plan == plan
	sameCycle := user.BillingCycle == cycle
	live := user.SubscriptionStatus.IsLive() && user.PlanEndDate != nil && user.PlanEndDate.After(now)

	r := Renewal{QueryLimit: quota}
	base := now
	if samePlan && sameCycle && live {
		base = *user.PlanEndDate
		r.Extended = true
		if user.PlanStartDate != nil {
			r.StartDate = *user.PlanStartDate
		}
	} else {
		r.StartDate = now
	}

	switch cycle {
	case models.BillingCycleMonthly:
		r.EndDate = base.AddDate(0, 1, 0)
	case models.BillingCycleYearly:
		r.EndDate = base.AddDate(1, 0, 0)
	default:
		return Renewal{}, apperrors.ErrInvalidPlan
	}
	return r, nil
}

type SubscriptionService interface {
	ApplyPayment(ctx context.Context, userID string, plan models.Plan, cycle models.BillingCycle) (*models.User, error)
	Cancel(ctx context.Context, userID string) (*models.User, error)
}

type SubscriptionServiceImpl struct {
	*Deps
}

func NewSubscriptionService(d *Deps) SubscriptionService {
	return &SubscriptionServiceImpl{Deps: d}
}

// ApplyPayment commits the new plan window and only then hands the user to the expiry worker,
// so a crash in between is repaired by startup recovery. The user is read fresh and only the
// plan columns are written.
func (s *SubscriptionServiceImpl) ApplyPayment(ctx context.Context, userID string, plan models.Plan, cycle models.BillingCycle) (*models.User, error) {
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	r, err := ComputeRenewal(user, plan, cycle, now)
	if err != nil {
		return nil, err
	}

	start, end := r.StartDate, r.EndDate
	if !start.IsZero() {
		user.PlanStartDate = &start
	}
	user.PlanEndDate = &end
	user.Plan = plan
	user.BillingCycle = cycle
	user.SubscriptionStatus = models.SubscriptionStatusActive
	user.QueryLimit = r.QueryLimit

	if err := s.Repos.Users.UpdatePlan(ctx, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.Workers.Subscriptions.HandleSubscriptionUpdate(ctx, user); err != nil {
		logger.CtxWithError(ctx, "failed to arm subscription expiry", err, "user_id", user.ID)
	}

	logger.CtxInfo(ctx, "subscription updated",
		"user_id", user.ID,
		"plan", plan,
		"billing_cycle", cycle,
		"extended", r.Extended,
		"plan_end_date", end,
	)
	return user, nil
}

// Cancel stops renewal; the plan stays usable until planEndDate and its expiry job stays armed.
func (s *SubscriptionServiceImpl) Cancel(ctx context.Context, userID string) (*models.User, error) {
	user, err := findUser(ctx, s.Deps, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus == models.SubscriptionStatusCancelled {
		return nil, apperrors.ErrAlreadyCancelled
	}
	if !user.Plan.IsPaid() || user.SubscriptionStatus != models.SubscriptionStatusActive {
		return nil, apperrors.ErrNoActiveSubscription
	}

	if err := s.Repos.Users.SetSubscriptionStatus(ctx, user.ID, models.SubscriptionStatusCancelled); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.SubscriptionStatus = models.SubscriptionStatusCancelled
	return user, nil
}
