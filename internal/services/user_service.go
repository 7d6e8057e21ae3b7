package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// UserService handles account business logic
type UserService struct {
	repo   UserRepository
	notify Notifier
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, notify Notifier, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		notify: notify,
		logger: logger,
	}
}

// CreateUser creates a new account with a hashed password. The password hash
// never leaves the data layer; callers get the persisted profile back.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, models.ErrWeakPassword
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hashedPassword

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("account creation rejected: email already registered")
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user created", slog.String("user_id", createdUser.ID))

	if s.notify != nil {
		s.notify.Welcome(ctx, createdUser.Email, createdUser.Name)
	}

	return createdUser, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ListUsers retrieves a page of users
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Int("limit", limit), slog.Int("offset", offset), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return users, nil
}

// UpdateUser applies the non-zero fields of user onto the stored profile.
func (s *UserService) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	existingUser, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user.Name != "" {
		existingUser.Name = user.Name
	}
	if user.Role != "" {
		existingUser.Role = user.Role
	}
	if user.Plan != "" {
		existingUser.Plan = user.Plan
	}
	if user.Status != "" {
		existingUser.Status = user.Status
	}

	updatedUser, err := s.repo.Update(ctx, id, existingUser)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return updatedUser, nil
}

// UpdatePassword verifies the current password and replaces it. The old hash
// is unusable the moment the update commits.
func (s *UserService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.logger.Info("password change rejected: current password mismatch", slog.String("user_id", id))
		return models.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return models.ErrWeakPassword
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, id, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password updated", slog.String("user_id", id))
	return nil
}

// DeleteUser removes the account. Sessions and subscriptions cascade at the
// database; audit rows keep a nulled actor reference.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}
