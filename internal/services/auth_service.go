package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	pkglogger "github.com/copyfolio/api/pkg/logger"
)

// AdminRepository defines the interface for admin account lookup
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// SessionRepository defines the interface for opaque session storage
type SessionRepository interface {
	Create(ctx context.Context, userID, userAgent, ipAddress string, ttl time.Duration) (*models.Session, error)
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Touch(ctx context.Context, token string) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    UserRepository
	adminRepo   AdminRepository
	sessionRepo SessionRepository
	tm          *auth.TokenManager
	audit       *AuditService
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserRepository, adminRepo AdminRepository, sessionRepo SessionRepository, tm *auth.TokenManager, audit *AuditService, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		tm:          tm,
		audit:       audit,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// AuthResponse represents the result of a successful login
type AuthResponse struct {
	Token        string        `json:"token"`
	SessionToken string        `json:"session_token,omitempty"`
	User         *UserProfile  `json:"user,omitempty"`
	Admin        *AdminProfile `json:"admin,omitempty"`
}

// UserProfile is the public shape of a user account; it never carries the hash.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AdminProfile is the public shape of an admin account.
type AdminProfile struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UserToProfile converts a user model to its public profile.
func UserToProfile(user *models.User) *UserProfile {
	return &UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Plan:      user.Plan,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func adminToProfile(admin *models.Admin) *AdminProfile {
	return &AdminProfile{
		ID:     admin.ID,
		Email:  admin.Email,
		Name:   admin.Name,
		Role:   admin.Role,
		Status: admin.Status,
	}
}

// Login authenticates a user and issues a bearer token plus an opaque
// server-side session. Unknown email and wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials", slog.String("email", pkglogger.SanitizedEmail(email)))
			s.audit.Record(ctx, "", models.AuditActionLogin, models.AuditEntityUser, nil,
				models.AuditChanges{"outcome": "invalid_credentials"}, ipAddress)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials", slog.String("email", pkglogger.SanitizedEmail(email)))
		s.audit.Record(ctx, user.ID, models.AuditActionLogin, models.AuditEntityUser, &user.ID,
			models.AuditChanges{"outcome": "invalid_credentials"}, ipAddress)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tm.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	session, err := s.sessionRepo.Create(ctx, user.ID, userAgent, ipAddress, s.sessionTTL)
	if err != nil {
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.audit.Record(ctx, user.ID, models.AuditActionLogin, models.AuditEntityUser, &user.ID,
		models.AuditChanges{"outcome": "success"}, ipAddress)

	return &AuthResponse{
		Token:        token,
		SessionToken: session.Token,
		User:         UserToProfile(user),
	}, nil
}

// AdminLogin authenticates against the admins table. Admins get a bearer
// token only; the sessions table references users, so no session row is
// created for them.
func (s *AuthService) AdminLogin(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("admin login failed: invalid credentials", slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get admin by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if admin.Status != models.StatusActive {
		s.logger.Info("admin login blocked", slog.String("admin_id", admin.ID), slog.String("status", admin.Status))
		return nil, models.ErrForbidden
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		s.logger.Info("admin login failed: invalid credentials")
		s.audit.Record(ctx, admin.ID, models.AuditActionLogin, models.AuditEntityUser, &admin.ID,
			models.AuditChanges{"outcome": "invalid_credentials", "surface": "admin"}, ipAddress)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tm.Generate(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin logged in", slog.String("admin_id", admin.ID))
	s.audit.Record(ctx, admin.ID, models.AuditActionLogin, models.AuditEntityUser, &admin.ID,
		models.AuditChanges{"outcome": "success", "surface": "admin"}, ipAddress)

	return &AuthResponse{
		Token: token,
		Admin: adminToProfile(admin),
	}, nil
}

// Verify validates a bearer token and returns the identity it carries. When
// the caller also presents its opaque session token, the session's activity
// timestamp is refreshed; a stale or foreign session token does not fail the
// verify, since the bearer token is what authenticates.
func (s *AuthService) Verify(ctx context.Context, token, sessionToken string) (*models.TokenClaims, error) {
	claims, err := s.tm.Validate(token)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	if sessionToken != "" {
		session, err := s.sessionRepo.GetByToken(ctx, sessionToken)
		if err == nil && session.UserID == claims.UserID {
			if err := s.sessionRepo.Touch(ctx, sessionToken); err != nil {
				s.logger.Error("failed to touch session", slog.String("user_id", claims.UserID), slog.Any("error", err))
			}
		}
	}

	return claims, nil
}

// Logout deletes the opaque session. A missing or already-expired session is
// not an error; the bearer token simply ages out.
func (s *AuthService) Logout(ctx context.Context, sessionToken, ipAddress string) error {
	if sessionToken == "" {
		return nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to look up session", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.sessionRepo.DeleteByToken(ctx, sessionToken); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to delete session", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", session.UserID))
	s.audit.Record(ctx, session.UserID, models.AuditActionLogout, models.AuditEntityUser, &session.UserID, nil, ipAddress)
	return nil
}
