package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/copyfolio/api/internal/models"
)

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	CreateWithPlan(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	GetActiveByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Subscription, error)
	CancelWithPlanReset(ctx context.Context, id, resetPlan string) (*models.Subscription, error)
}

// SubscriptionService handles plan activation and cancellation
type SubscriptionService struct {
	repo     SubscriptionRepository
	userRepo UserRepository
	audit    *AuditService
	notify   Notifier
	logger   *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(repo SubscriptionRepository, userRepo UserRepository, audit *AuditService, notify Notifier, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		userRepo: userRepo,
		audit:    audit,
		notify:   notify,
		logger:   logger,
	}
}

// Activate creates an Active subscription for the user and advances their
// plan, both in one repository transaction. Double activation is arbitrated
// by the database's partial unique index, not by the read below; the read
// only gives a friendlier early exit.
func (s *SubscriptionService) Activate(ctx context.Context, userID, plan, ipAddress string) (*models.Subscription, error) {
	if !models.ValidPlan(plan) {
		return nil, models.ErrBadRequest
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetActiveByUserID(ctx, userID); err == nil {
		return nil, models.ErrSubscriptionConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check active subscription", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	sub, err := s.repo.CreateWithPlan(ctx, &models.Subscription{
		UserID: userID,
		Plan:   plan,
		Status: models.SubscriptionActive,
	})
	if err != nil {
		if errors.Is(err, models.ErrSubscriptionConflict) {
			s.logger.Info("activation lost the race", slog.String("user_id", userID))
			return nil, models.ErrSubscriptionConflict
		}
		s.logger.Error("failed to create subscription", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("subscription activated",
		slog.String("user_id", userID),
		slog.String("plan", plan),
		slog.String("subscription_id", sub.ID),
	)
	s.audit.Record(ctx, userID, models.AuditActionActivate, models.AuditEntitySubscription, &sub.ID,
		models.AuditChanges{"plan": plan}, ipAddress)

	if s.notify != nil {
		s.notify.SubscriptionActivated(ctx, user.Email, user.Name, plan)
	}

	return sub, nil
}

// Cancel flips the subscription to Cancelled and resets the owner's plan to
// Starter. A subscription belonging to someone else is reported as not found
// rather than leaking its existence.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID, requesterID, ipAddress string) (*models.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get subscription", slog.String("subscription_id", subscriptionID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if sub.UserID != requesterID {
		s.logger.Info("cancel rejected: requester does not own subscription",
			slog.String("subscription_id", subscriptionID),
			slog.String("requester_id", requesterID),
		)
		return nil, models.ErrNotFound
	}

	cancelled, err := s.repo.CancelWithPlanReset(ctx, subscriptionID, models.PlanStarter)
	if err != nil {
		s.logger.Error("failed to cancel subscription", slog.String("subscription_id", subscriptionID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("subscription cancelled",
		slog.String("subscription_id", subscriptionID),
		slog.String("user_id", sub.UserID),
	)
	s.audit.Record(ctx, requesterID, models.AuditActionCancel, models.AuditEntitySubscription, &subscriptionID,
		models.AuditChanges{"plan": sub.Plan}, ipAddress)

	return cancelled, nil
}

// GetCurrent returns the user's Active subscription, if any.
func (s *SubscriptionService) GetCurrent(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get active subscription", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return sub, nil
}

// History returns every subscription the user has ever held, newest first.
func (s *SubscriptionService) History(ctx context.Context, userID string) ([]*models.Subscription, error) {
	subs, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list subscriptions", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return subs, nil
}
