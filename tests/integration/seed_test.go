package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/internal/repositories"
	"github.com/copyfolio/api/internal/services"
)

func seedDefaults() []*models.Package {
	return []*models.Package{
		{Name: "Starter", Price: 0, Currency: "USD", Features: models.FeatureList{"Copy 1 trader"}, Active: true, DisplayOrder: 1},
		{Name: "Pro", Price: 49, Currency: "USD", Features: models.FeatureList{"Copy up to 5 traders"}, Active: true, DisplayOrder: 2},
		{Name: "Expert", Price: 99, Currency: "USD", Features: models.FeatureList{"Copy unlimited traders"}, Active: true, DisplayOrder: 3},
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	resetDatabase(t)

	ctx := context.Background()
	logger := discardLogger()

	packageRepo := repositories.NewPackageRepository(testDB.DB)
	userRepo := repositories.NewUserRepository(testDB.DB)
	auditRepo := repositories.NewAuditLogRepository(testDB.DB)
	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	packageService := services.NewPackageService(packageRepo, auditService, logger)

	require.NoError(t, packageService.Seed(ctx, seedDefaults()))

	var count int
	require.NoError(t, testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM packages`).Scan(&count))
	assert.Equal(t, 3, count)

	// Seeding a non-empty catalog fails and inserts nothing
	err := packageService.Seed(ctx, seedDefaults())
	assert.ErrorIs(t, err, models.ErrAlreadySeeded)

	require.NoError(t, testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM packages`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestSeededCatalogRecoversFeatures(t *testing.T) {
	resetDatabase(t)

	ctx := context.Background()
	logger := discardLogger()

	packageRepo := repositories.NewPackageRepository(testDB.DB)
	userRepo := repositories.NewUserRepository(testDB.DB)
	auditRepo := repositories.NewAuditLogRepository(testDB.DB)
	auditService := services.NewAuditService(auditRepo, userRepo, logger)
	packageService := services.NewPackageService(packageRepo, auditService, logger)

	require.NoError(t, packageService.Seed(ctx, seedDefaults()))

	pkgs, err := packageService.ListActivePackages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 3)

	// Ordered by display_order, features round-trip through JSONB
	assert.Equal(t, "Starter", pkgs[0].Name)
	assert.Equal(t, models.FeatureList{"Copy 1 trader"}, pkgs[0].Features)
	assert.Equal(t, "Pro", pkgs[1].Name)
	assert.Equal(t, "Expert", pkgs[2].Name)
}
