package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/config"
	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/handlers"
	middlewareCustom "github.com/copyfolio/api/internal/middleware"
	"github.com/copyfolio/api/internal/repositories"
	"github.com/copyfolio/api/internal/routes"
	"github.com/copyfolio/api/internal/services"
	pkghttp "github.com/copyfolio/api/pkg/http"
)

// TestServer wraps httptest.Server with a real database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Config *config.Config

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server backed by the given database
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-32-characters-long-for-testing",
			TokenExpiry:     15 * time.Minute,
			SessionExpiry:   24 * time.Hour,
			CleanupInterval: 1 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
		},
	}

	userRepo := repositories.NewUserRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	landingRepo := repositories.NewLandingRepository(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	userService := services.NewUserService(userRepo, services.NopNotifier{}, logger)
	authService := services.NewAuthService(userRepo, adminRepo, sessionRepo, tokenManager, auditService, cfg.Auth.SessionExpiry, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, auditService, services.NopNotifier{}, logger)
	packageService := services.NewPackageService(packageRepo, auditService, logger)
	landingService := services.NewLandingService(landingRepo, auditService, logger)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, ipConfig)
	packageHandler := handlers.NewPackageHandler(packageService, ipConfig)
	landingHandler := handlers.NewLandingHandler(landingService, ipConfig)
	auditHandler := handlers.NewAuditHandler(auditService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, userHandler, subscriptionHandler, packageHandler, landingHandler, auditHandler, tokenManager)

	server := httptest.NewServer(r)

	return &TestServer{
		Server: server,
		DB:     db,
		Config: cfg,
		logger: logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses a JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokensFromResponse extracts the JWT and session token from a login response
func ExtractTokensFromResponse(resp *http.Response) (token, sessionToken string, err error) {
	defer resp.Body.Close()

	var authResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", "", err
	}

	if t, ok := authResp["token"].(string); ok {
		token = t
	}
	if s, ok := authResp["session_token"].(string); ok {
		sessionToken = s
	}

	return token, sessionToken, nil
}
