package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/background"
	"github.com/copyfolio/api/internal/config"
	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/handlers"
	middlewareCustom "github.com/copyfolio/api/internal/middleware"
	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/internal/repositories"
	"github.com/copyfolio/api/internal/routes"
	"github.com/copyfolio/api/internal/services"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	pkghttp "github.com/copyfolio/api/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(context.Background(), &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	landingRepo := repositories.NewLandingRepository(db)

	cleanupManager := background.NewCleanupManager(sessionRepo, logger, cfg.Auth.CleanupInterval)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// Notifications are best-effort; a broken SES setup falls back to no-op.
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Email.Enabled {
		sesNotifier, err := services.NewSESNotifier(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Warn("failed to initialize SES notifier, notifications disabled", slog.Any("error", err))
		} else {
			notifier = sesNotifier
		}
	}

	// Services
	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	userService := services.NewUserService(userRepo, notifier, logger)
	authService := services.NewAuthService(userRepo, adminRepo, sessionRepo, tokenManager, auditService, cfg.Auth.SessionExpiry, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, auditService, notifier, logger)
	packageService := services.NewPackageService(packageRepo, auditService, logger)
	landingService := services.NewLandingService(landingRepo, auditService, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, ipConfig)
	packageHandler := handlers.NewPackageHandler(packageService, ipConfig)
	landingHandler := handlers.NewLandingHandler(landingService, ipConfig)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Bootstrap the first superadmin if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureSuperadmin(ctx, adminRepo, logger); err != nil {
		logger.Error("failed to ensure superadmin", slog.Any("error", err))
	}
	cancel()

	corsConfig := middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, userHandler, subscriptionHandler, packageHandler, landingHandler, auditHandler, tokenManager)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureSuperadmin creates the first superadmin if ADMIN_EMAIL and
// ADMIN_PASSWORD are set. Admin accounts are never created through the API.
func ensureSuperadmin(ctx context.Context, adminRepo *repositories.AdminRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping superadmin creation")
		return nil
	}

	_, err := adminRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("superadmin already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if superadmin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash superadmin password: %w", err)
	}

	_, err = adminRepo.Create(ctx, &models.Admin{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Superadmin",
		Role:         models.RoleSuperadmin,
		Status:       models.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create superadmin: %w", err)
	}

	logger.Info("superadmin created successfully")
	return nil
}
