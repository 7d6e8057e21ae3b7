package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/copyfolio/api/internal/config"
	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/internal/repositories"
	"github.com/copyfolio/api/internal/services"
)

// defaultPackages is the catalog installed on a fresh deployment. Ordering
// matches display_order so the landing page lists them cheapest first.
func defaultPackages() []*models.Package {
	return []*models.Package{
		{
			Name:        "Starter",
			Description: "Follow a single trader and mirror their positions.",
			Price:       0,
			Currency:    "USD",
			Features: models.FeatureList{
				"Copy 1 trader",
				"Manual position sync",
				"Email support",
			},
			Active:       true,
			DisplayOrder: 1,
		},
		{
			Name:        "Pro",
			Description: "Diversify across multiple traders with automatic execution.",
			Price:       49,
			Currency:    "USD",
			Features: models.FeatureList{
				"Copy up to 5 traders",
				"Automatic position sync",
				"Performance analytics",
				"Priority support",
			},
			Active:       true,
			DisplayOrder: 2,
		},
		{
			Name:        "Expert",
			Description: "Unlimited copying with advanced risk controls.",
			Price:       99,
			Currency:    "USD",
			Features: models.FeatureList{
				"Copy unlimited traders",
				"Automatic position sync",
				"Performance analytics",
				"Custom risk limits",
				"Dedicated support",
			},
			Active:       true,
			DisplayOrder: 3,
		},
	}
}

// defaultLanding is the initial landing page document. Admins replace it
// wholesale through PUT /landing.
var defaultLanding = map[string]interface{}{
	"hero": map[string]interface{}{
		"title":    "Copy the traders you trust",
		"subtitle": "Mirror proven strategies automatically, on your terms.",
	},
	"cta": map[string]interface{}{
		"label": "Get started",
		"href":  "/signup",
	},
	"sections": []interface{}{},
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(context.Background(), &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auditRepo := repositories.NewAuditLogRepository(db)
	userRepo := repositories.NewUserRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	landingRepo := repositories.NewLandingRepository(db)

	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	packageService := services.NewPackageService(packageRepo, auditService, logger)
	landingService := services.NewLandingService(landingRepo, auditService, logger)

	if err := seedPackages(ctx, packageService); err != nil {
		logger.Error("package seeding failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := seedLanding(ctx, landingService); err != nil {
		logger.Error("landing seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func seedPackages(ctx context.Context, svc *services.PackageService) error {
	err := svc.Seed(ctx, defaultPackages())
	if errors.Is(err, models.ErrAlreadySeeded) {
		fmt.Println("package catalog already seeded, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("package catalog seeded")
	return nil
}

func seedLanding(ctx context.Context, svc *services.LandingService) error {
	_, err := svc.Get(ctx)
	if err == nil {
		fmt.Println("landing settings already configured, nothing to do")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	content, err := json.Marshal(defaultLanding)
	if err != nil {
		return err
	}

	if _, err := svc.Set(ctx, content, "", ""); err != nil {
		return err
	}

	fmt.Println("landing settings seeded")
	return nil
}
