package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/copyfolio/api/internal/models"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	"github.com/google/uuid"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc         func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
	DeleteFunc         func(ctx context.Context, id string) error
	ExistsFunc         func(ctx context.Context, id string) (bool, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

// MockAdminRepository implements AdminRepository for testing
type MockAdminRepository struct {
	GetByEmailFunc func(ctx context.Context, email string) (*models.Admin, error)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc         func(ctx context.Context, userID, userAgent, ipAddress string, ttl time.Duration) (*models.Session, error)
	GetByTokenFunc     func(ctx context.Context, token string) (*models.Session, error)
	TouchFunc          func(ctx context.Context, token string) error
	DeleteByTokenFunc  func(ctx context.Context, token string) error
	DeleteByUserIDFunc func(ctx context.Context, userID string) error
	DeleteExpiredFunc  func(ctx context.Context) (int64, error)
}

func (m *MockSessionRepository) Create(ctx context.Context, userID, userAgent, ipAddress string, ttl time.Duration) (*models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, userAgent, ipAddress, ttl)
	}
	token, _ := pkgauth.GenerateSessionToken()
	now := time.Now()
	return &models.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Token:        token,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		CreatedAt:    now,
	}, nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) Touch(ctx context.Context, token string) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.DeleteByTokenFunc != nil {
		return m.DeleteByTokenFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockSubscriptionRepository implements SubscriptionRepository for testing
type MockSubscriptionRepository struct {
	CreateWithPlanFunc      func(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	GetByIDFunc             func(ctx context.Context, id string) (*models.Subscription, error)
	GetActiveByUserIDFunc   func(ctx context.Context, userID string) (*models.Subscription, error)
	ListByUserIDFunc        func(ctx context.Context, userID string) ([]*models.Subscription, error)
	CancelWithPlanResetFunc func(ctx context.Context, id, resetPlan string) (*models.Subscription, error)
}

func (m *MockSubscriptionRepository) CreateWithPlan(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if m.CreateWithPlanFunc != nil {
		return m.CreateWithPlanFunc(ctx, sub)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	if m.GetActiveByUserIDFunc != nil {
		return m.GetActiveByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubscriptionRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Subscription, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return []*models.Subscription{}, nil
}

func (m *MockSubscriptionRepository) CancelWithPlanReset(ctx context.Context, id, resetPlan string) (*models.Subscription, error) {
	if m.CancelWithPlanResetFunc != nil {
		return m.CancelWithPlanResetFunc(ctx, id, resetPlan)
	}
	return nil, models.ErrInternalServer
}

// MockPackageRepository implements PackageRepository for testing
type MockPackageRepository struct {
	CreateFunc     func(ctx context.Context, pkg *models.Package) (*models.Package, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.Package, error)
	ListFunc       func(ctx context.Context) ([]*models.Package, error)
	ListActiveFunc func(ctx context.Context) ([]*models.Package, error)
	UpdateFunc     func(ctx context.Context, id string, pkg *models.Package) (*models.Package, error)
	DeleteFunc     func(ctx context.Context, id string) error
	CountFunc      func(ctx context.Context) (int64, error)
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, pkg)
	}
	return pkg, nil
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPackageRepository) List(ctx context.Context) ([]*models.Package, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Package{}, nil
}

func (m *MockPackageRepository) ListActive(ctx context.Context) ([]*models.Package, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return []*models.Package{}, nil
}

func (m *MockPackageRepository) Update(ctx context.Context, id string, pkg *models.Package) (*models.Package, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, pkg)
	}
	return pkg, nil
}

func (m *MockPackageRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPackageRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	CreateFunc      func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListByActorFunc func(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// Created collects every entry passed to Create when CreateFunc is nil.
	Created []*models.AuditLog
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.Created = append(m.Created, log)
	return log, nil
}

func (m *MockAuditLogRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditLogRepository) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListByActorFunc != nil {
		return m.ListByActorFunc(ctx, actorID, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

// MockLandingRepository implements LandingRepository for testing
type MockLandingRepository struct {
	GetFunc    func(ctx context.Context) (*models.LandingSettings, error)
	UpsertFunc func(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error)
}

func (m *MockLandingRepository) Get(ctx context.Context) (*models.LandingSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return nil, models.ErrNotFound
}

func (m *MockLandingRepository) Upsert(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, content)
	}
	return &models.LandingSettings{Content: content, UpdatedAt: time.Now()}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestUser creates a user model with sensible defaults for tests
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      models.RoleUser,
		Plan:      models.PlanStarter,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newTestAuditService wires an AuditService against in-memory mocks
func newTestAuditService(userRepo UserRepository) (*AuditService, *MockAuditLogRepository) {
	auditRepo := &MockAuditLogRepository{}
	return NewAuditService(auditRepo, userRepo, discardLogger()), auditRepo
}
