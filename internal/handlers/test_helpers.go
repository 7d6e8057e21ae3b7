package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/internal/services"
	pkghttp "github.com/copyfolio/api/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with a JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds claims for a regular user to the request context
func WithAuthContext(req *http.Request, userID, email string) *http.Request {
	return withClaims(req, userID, email, models.RoleUser)
}

// WithAdminContext adds claims for an admin to the request context
func WithAdminContext(req *http.Request, userID, email string) *http.Request {
	return withClaims(req, userID, email, models.RoleAdmin)
}

func withClaims(req *http.Request, userID, email, role string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks response status and decodes the JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks status and machine-readable error code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc      func(ctx context.Context, email, password, userAgent, ipAddress string) (*services.AuthResponse, error)
	AdminLoginFunc func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	VerifyFunc     func(ctx context.Context, token, sessionToken string) (*models.TokenClaims, error)
	LogoutFunc     func(ctx context.Context, sessionToken, ipAddress string) error
}

func (m *MockAuthService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, userAgent, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) AdminLogin(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.AdminLoginFunc != nil {
		return m.AdminLoginFunc(ctx, email, password, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Verify(ctx context.Context, token, sessionToken string) (*models.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token, sessionToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, sessionToken, ipAddress string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionToken, ipAddress)
	}
	return nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	CreateUserFunc     func(ctx context.Context, user *models.User, password string) (*models.User, error)
	GetUserFunc        func(ctx context.Context, id string) (*models.User, error)
	ListUsersFunc      func(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateUserFunc     func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, currentPassword, newPassword string) error
	DeleteUserFunc     func(ctx context.Context, id string) error
}

func (m *MockUserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, user)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, currentPassword, newPassword)
	}
	return nil
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

// MockSubscriptionService implements SubscriptionServiceInterface for testing
type MockSubscriptionService struct {
	ActivateFunc   func(ctx context.Context, userID, plan, ipAddress string) (*models.Subscription, error)
	CancelFunc     func(ctx context.Context, subscriptionID, requesterID, ipAddress string) (*models.Subscription, error)
	GetCurrentFunc func(ctx context.Context, userID string) (*models.Subscription, error)
	HistoryFunc    func(ctx context.Context, userID string) ([]*models.Subscription, error)
}

func (m *MockSubscriptionService) Activate(ctx context.Context, userID, plan, ipAddress string) (*models.Subscription, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, userID, plan, ipAddress)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, subscriptionID, requesterID, ipAddress string) (*models.Subscription, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, subscriptionID, requesterID, ipAddress)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubscriptionService) GetCurrent(ctx context.Context, userID string) (*models.Subscription, error) {
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubscriptionService) History(ctx context.Context, userID string) ([]*models.Subscription, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID)
	}
	return []*models.Subscription{}, nil
}

// MockPackageService implements PackageServiceInterface for testing
type MockPackageService struct {
	CreatePackageFunc      func(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error)
	GetPackageFunc         func(ctx context.Context, id string) (*models.Package, error)
	ListActivePackagesFunc func(ctx context.Context) ([]*models.Package, error)
	ListAllPackagesFunc    func(ctx context.Context) ([]*models.Package, error)
	UpdatePackageFunc      func(ctx context.Context, id string, updates *models.PackageUpdate, actorID, ipAddress string) (*models.Package, error)
	DeletePackageFunc      func(ctx context.Context, id, actorID, ipAddress string) error
}

func (m *MockPackageService) CreatePackage(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error) {
	if m.CreatePackageFunc != nil {
		return m.CreatePackageFunc(ctx, pkg, actorID, ipAddress)
	}
	return pkg, nil
}

func (m *MockPackageService) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	if m.GetPackageFunc != nil {
		return m.GetPackageFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPackageService) ListActivePackages(ctx context.Context) ([]*models.Package, error) {
	if m.ListActivePackagesFunc != nil {
		return m.ListActivePackagesFunc(ctx)
	}
	return []*models.Package{}, nil
}

func (m *MockPackageService) ListAllPackages(ctx context.Context) ([]*models.Package, error) {
	if m.ListAllPackagesFunc != nil {
		return m.ListAllPackagesFunc(ctx)
	}
	return []*models.Package{}, nil
}

func (m *MockPackageService) UpdatePackage(ctx context.Context, id string, updates *models.PackageUpdate, actorID, ipAddress string) (*models.Package, error) {
	if m.UpdatePackageFunc != nil {
		return m.UpdatePackageFunc(ctx, id, updates, actorID, ipAddress)
	}
	return nil, models.ErrNotFound
}

func (m *MockPackageService) DeletePackage(ctx context.Context, id, actorID, ipAddress string) error {
	if m.DeletePackageFunc != nil {
		return m.DeletePackageFunc(ctx, id, actorID, ipAddress)
	}
	return nil
}

// MockLandingService implements LandingServiceInterface for testing
type MockLandingService struct {
	GetFunc func(ctx context.Context) (*models.LandingSettings, error)
	SetFunc func(ctx context.Context, content json.RawMessage, actorID, ipAddress string) (*models.LandingSettings, error)
}

func (m *MockLandingService) Get(ctx context.Context) (*models.LandingSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return nil, models.ErrNotFound
}

func (m *MockLandingService) Set(ctx context.Context, content json.RawMessage, actorID, ipAddress string) (*models.LandingSettings, error) {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, content, actorID, ipAddress)
	}
	return &models.LandingSettings{Content: content}, nil
}
