package services

import (
	"context"
	"testing"

	"github.com/copyfolio/api/internal/models"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes password before persisting", func(t *testing.T) {
		var persisted *models.User
		mockRepo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				persisted = user
				user.ID = "user-123"
				return user, nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		created, err := service.CreateUser(ctx, &models.User{Email: "alice@example.com", Name: "Alice"}, "password123")

		require.NoError(t, err)
		assert.Equal(t, "user-123", created.ID)
		require.NotNil(t, persisted)
		assert.NotEqual(t, "password123", persisted.PasswordHash)
		assert.NoError(t, pkgauth.ComparePassword(persisted.PasswordHash, "password123"))
	})

	t.Run("weak password rejected without touching the repo", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				t.Fatal("repo should not be called")
				return nil, nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		_, err := service.CreateUser(ctx, &models.User{Email: "a@example.com"}, "short")
		assert.ErrorIs(t, err, models.ErrWeakPassword)
	})

	t.Run("duplicate email surfaces conflict", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				return nil, models.ErrConflict
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		_, err := service.CreateUser(ctx, &models.User{Email: "taken@example.com"}, "password123")
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("merges only non-zero fields", func(t *testing.T) {
		existing := NewTestUser("user-1", "bob@example.com", "Bob")
		existing.Plan = models.PlanPro

		var saved *models.User
		mockRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return existing, nil
			},
			UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
				saved = user
				return user, nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		_, err := service.UpdateUser(ctx, "user-1", &models.User{Name: "Robert"})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Robert", saved.Name)
		assert.Equal(t, models.PlanPro, saved.Plan)
		assert.Equal(t, "bob@example.com", saved.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		service := NewUserService(&MockUserRepository{}, NopNotifier{}, discardLogger())

		_, err := service.UpdateUser(ctx, "missing", &models.User{Name: "X"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	hash, err := pkgauth.HashPassword("original-pass")
	require.NoError(t, err)

	newUserWithHash := func() *models.User {
		u := NewTestUser("user-1", "carol@example.com", "Carol")
		u.PasswordHash = hash
		return u
	}

	t.Run("wrong current password", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return newUserWithHash(), nil
			},
			UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
				t.Fatal("password should not be updated")
				return nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		err := service.UpdatePassword(ctx, "user-1", "not-the-password", "new-password")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("weak replacement password", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return newUserWithHash(), nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		err := service.UpdatePassword(ctx, "user-1", "original-pass", "tiny")
		assert.ErrorIs(t, err, models.ErrWeakPassword)
	})

	t.Run("success stores a hash the old password cannot match", func(t *testing.T) {
		var storedHash string
		mockRepo := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return newUserWithHash(), nil
			},
			UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
				storedHash = passwordHash
				return nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		err := service.UpdatePassword(ctx, "user-1", "original-pass", "replacement-pass")

		require.NoError(t, err)
		require.NotEmpty(t, storedHash)
		assert.NoError(t, pkgauth.ComparePassword(storedHash, "replacement-pass"))
		assert.Error(t, pkgauth.ComparePassword(storedHash, "original-pass"))
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id string) error {
				return models.ErrNotFound
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		assert.ErrorIs(t, service.DeleteUser(ctx, "missing"), models.ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		mockRepo := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id string) error {
				assert.Equal(t, "user-1", id)
				return nil
			},
		}
		service := NewUserService(mockRepo, NopNotifier{}, discardLogger())

		assert.NoError(t, service.DeleteUser(ctx, "user-1"))
	})
}
