package services

import (
	"context"
	"testing"
	"time"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-32-characters-long!!"

func newTestAuthService(t *testing.T, userRepo *MockUserRepository, adminRepo *MockAdminRepository, sessionRepo *MockSessionRepository) (*AuthService, *MockAuditLogRepository) {
	t.Helper()
	tm := auth.NewTokenManager(testJWTSecret, time.Hour)
	audit, auditRepo := newTestAuditService(userRepo)
	return NewAuthService(userRepo, adminRepo, sessionRepo, tm, audit, 24*time.Hour, discardLogger()), auditRepo
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := pkgauth.HashPassword("correct-password")
	require.NoError(t, err)

	userID := uuid.New().String()
	knownUser := func() *models.User {
		u := NewTestUser(userID, "alice@example.com", "Alice")
		u.PasswordHash = hash
		return u
	}

	t.Run("success issues bearer token and session", func(t *testing.T) {
		userRepo := &MockUserRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
				assert.Equal(t, "alice@example.com", email)
				return knownUser(), nil
			},
			ExistsFunc: func(ctx context.Context, id string) (bool, error) { return true, nil },
		}
		sessionRepo := &MockSessionRepository{}
		service, auditRepo := newTestAuthService(t, userRepo, &MockAdminRepository{}, sessionRepo)

		resp, err := service.Login(ctx, "Alice@Example.com ", "correct-password", "go-test", "10.0.0.1")

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.SessionToken)
		require.NotNil(t, resp.User)
		assert.Equal(t, "alice@example.com", resp.User.Email)

		claims, err := service.Verify(ctx, resp.Token, "")
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)

		require.Len(t, auditRepo.Created, 1)
		assert.Equal(t, models.AuditActionLogin, auditRepo.Created[0].Action)
		require.NotNil(t, auditRepo.Created[0].ActorID)
		assert.Equal(t, userID, auditRepo.Created[0].ActorID.String())
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		userRepo := &MockUserRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
				if email == "alice@example.com" {
					return knownUser(), nil
				}
				return nil, models.ErrNotFound
			},
		}
		service, _ := newTestAuthService(t, userRepo, &MockAdminRepository{}, &MockSessionRepository{})

		_, errUnknown := service.Login(ctx, "nobody@example.com", "correct-password", "", "")
		_, errWrongPass := service.Login(ctx, "alice@example.com", "wrong-password", "", "")

		assert.ErrorIs(t, errUnknown, models.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, models.ErrInvalidCredentials)
		assert.Equal(t, errUnknown, errWrongPass)
	})

	t.Run("empty email", func(t *testing.T) {
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, &MockSessionRepository{})

		_, err := service.Login(ctx, "   ", "whatever", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()

	hash, err := pkgauth.HashPassword("admin-password")
	require.NoError(t, err)

	knownAdmin := func(status string) *models.Admin {
		return &models.Admin{
			ID:           uuid.New().String(),
			Email:        "root@example.com",
			PasswordHash: hash,
			Name:         "Root",
			Role:         models.RoleSuperadmin,
			Status:       status,
		}
	}

	t.Run("success issues token without a session", func(t *testing.T) {
		adminRepo := &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return knownAdmin(models.StatusActive), nil
			},
		}
		sessionRepo := &MockSessionRepository{
			CreateFunc: func(ctx context.Context, userID, userAgent, ipAddress string, ttl time.Duration) (*models.Session, error) {
				t.Fatal("admin login must not create a session")
				return nil, nil
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, adminRepo, sessionRepo)

		resp, err := service.AdminLogin(ctx, "root@example.com", "admin-password", "10.0.0.1")

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Empty(t, resp.SessionToken)
		require.NotNil(t, resp.Admin)
		assert.Equal(t, models.RoleSuperadmin, resp.Admin.Role)
	})

	t.Run("suspended admin is forbidden", func(t *testing.T) {
		adminRepo := &MockAdminRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.Admin, error) {
				return knownAdmin(models.StatusSuspended), nil
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, adminRepo, &MockSessionRepository{})

		_, err := service.AdminLogin(ctx, "root@example.com", "admin-password", "")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("unknown admin", func(t *testing.T) {
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, &MockSessionRepository{})

		_, err := service.AdminLogin(ctx, "nobody@example.com", "admin-password", "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, &MockSessionRepository{})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Verify(ctx, "not-a-token", "")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := auth.NewTokenManager("another-secret-32-characters-xx!!", time.Hour)
		token, err := other.Generate(uuid.New().String(), "a@example.com", models.RoleUser)
		require.NoError(t, err)

		_, err = service.Verify(ctx, token, "")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

// Presenting the opaque session token on verify refreshes the session's
// activity timestamp; foreign or stale session tokens are ignored.
func TestAuthService_VerifyTouchesSession(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	tm := auth.NewTokenManager(testJWTSecret, time.Hour)
	token, err := tm.Generate(userID, "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	t.Run("own session gets touched", func(t *testing.T) {
		var touched []string
		sessionRepo := &MockSessionRepository{
			GetByTokenFunc: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{ID: uuid.New().String(), UserID: userID, Token: token}, nil
			},
			TouchFunc: func(ctx context.Context, token string) error {
				touched = append(touched, token)
				return nil
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, sessionRepo)

		claims, err := service.Verify(ctx, token, "session-token-abc")

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, []string{"session-token-abc"}, touched)
	})

	t.Run("someone else's session is left alone", func(t *testing.T) {
		sessionRepo := &MockSessionRepository{
			GetByTokenFunc: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{ID: uuid.New().String(), UserID: uuid.New().String(), Token: token}, nil
			},
			TouchFunc: func(ctx context.Context, token string) error {
				t.Fatal("foreign session must not be touched")
				return nil
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, sessionRepo)

		_, err := service.Verify(ctx, token, "session-token-abc")
		require.NoError(t, err)
	})

	t.Run("expired session does not fail the verify", func(t *testing.T) {
		sessionRepo := &MockSessionRepository{
			GetByTokenFunc: func(ctx context.Context, token string) (*models.Session, error) {
				return nil, models.ErrNotFound
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, sessionRepo)

		claims, err := service.Verify(ctx, token, "long-gone")
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the session and audits", func(t *testing.T) {
		userID := uuid.New().String()
		deleted := ""
		userRepo := &MockUserRepository{
			ExistsFunc: func(ctx context.Context, id string) (bool, error) { return true, nil },
		}
		sessionRepo := &MockSessionRepository{
			GetByTokenFunc: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{ID: uuid.New().String(), UserID: userID, Token: token}, nil
			},
			DeleteByTokenFunc: func(ctx context.Context, token string) error {
				deleted = token
				return nil
			},
		}
		service, auditRepo := newTestAuthService(t, userRepo, &MockAdminRepository{}, sessionRepo)

		require.NoError(t, service.Logout(ctx, "session-token-abc", "10.0.0.1"))
		assert.Equal(t, "session-token-abc", deleted)
		require.Len(t, auditRepo.Created, 1)
		assert.Equal(t, models.AuditActionLogout, auditRepo.Created[0].Action)
	})

	t.Run("missing session is not an error", func(t *testing.T) {
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, &MockSessionRepository{})

		assert.NoError(t, service.Logout(ctx, "never-issued", ""))
	})

	t.Run("empty token is a no-op", func(t *testing.T) {
		sessionRepo := &MockSessionRepository{
			GetByTokenFunc: func(ctx context.Context, token string) (*models.Session, error) {
				t.Fatal("lookup should not run for an empty token")
				return nil, nil
			},
		}
		service, _ := newTestAuthService(t, &MockUserRepository{}, &MockAdminRepository{}, sessionRepo)

		assert.NoError(t, service.Logout(ctx, "", ""))
	})
}
