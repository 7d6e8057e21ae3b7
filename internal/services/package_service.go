package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/copyfolio/api/internal/models"
)

// PackageRepository defines the interface for package catalog data access
type PackageRepository interface {
	Create(ctx context.Context, pkg *models.Package) (*models.Package, error)
	GetByID(ctx context.Context, id string) (*models.Package, error)
	List(ctx context.Context) ([]*models.Package, error)
	ListActive(ctx context.Context) ([]*models.Package, error)
	Update(ctx context.Context, id string, pkg *models.Package) (*models.Package, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// PackageService handles the purchasable package catalog
type PackageService struct {
	repo   PackageRepository
	audit  *AuditService
	logger *slog.Logger
}

// NewPackageService creates a new PackageService
func NewPackageService(repo PackageRepository, audit *AuditService, logger *slog.Logger) *PackageService {
	return &PackageService{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// CreatePackage adds a new offering. Package names are unique.
func (s *PackageService) CreatePackage(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error) {
	if pkg.Price < 0 {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, pkg)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("package creation rejected: name taken", slog.String("name", pkg.Name))
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create package", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("package created", slog.String("package_id", created.ID), slog.String("name", created.Name))
	s.audit.Record(ctx, actorID, models.AuditActionCreate, models.AuditEntityPackage, &created.ID,
		models.AuditChanges{"name": created.Name, "price": created.Price}, ipAddress)

	return created, nil
}

// GetPackage retrieves a package by ID
func (s *PackageService) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get package", slog.String("package_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return pkg, nil
}

// ListActivePackages returns the public catalog: active packages in display order.
func (s *PackageService) ListActivePackages(ctx context.Context) ([]*models.Package, error) {
	pkgs, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active packages", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return pkgs, nil
}

// ListAllPackages returns the full catalog for admins, inactive included.
func (s *PackageService) ListAllPackages(ctx context.Context) ([]*models.Package, error) {
	pkgs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list packages", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return pkgs, nil
}

// UpdatePackage applies the provided fields onto the stored package. Nil
// fields in the update keep their stored values.
func (s *PackageService) UpdatePackage(ctx context.Context, id string, updates *models.PackageUpdate, actorID, ipAddress string) (*models.Package, error) {
	if updates.Price != nil && *updates.Price < 0 {
		return nil, models.ErrBadRequest
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get package", slog.String("package_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if updates.Name != nil {
		existing.Name = *updates.Name
	}
	if updates.Description != nil {
		existing.Description = *updates.Description
	}
	if updates.Price != nil {
		existing.Price = *updates.Price
	}
	if updates.Currency != nil {
		existing.Currency = *updates.Currency
	}
	if updates.Features != nil {
		existing.Features = updates.Features
	}
	if updates.Active != nil {
		existing.Active = *updates.Active
	}
	if updates.DisplayOrder != nil {
		existing.DisplayOrder = *updates.DisplayOrder
	}

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update package", slog.String("package_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("package updated", slog.String("package_id", id))
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, models.AuditEntityPackage, &id,
		models.AuditChanges{"name": updated.Name}, ipAddress)

	return updated, nil
}

// DeletePackage removes a package from the catalog.
func (s *PackageService) DeletePackage(ctx context.Context, id, actorID, ipAddress string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete package", slog.String("package_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("package deleted", slog.String("package_id", id))
	s.audit.Record(ctx, actorID, models.AuditActionDelete, models.AuditEntityPackage, &id, nil, ipAddress)
	return nil
}

// Seed inserts the given defaults into an empty catalog. A non-empty catalog
// fails with ErrAlreadySeeded and inserts nothing.
func (s *PackageService) Seed(ctx context.Context, defaults []*models.Package) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count packages", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if count > 0 {
		return models.ErrAlreadySeeded
	}

	for _, pkg := range defaults {
		if _, err := s.repo.Create(ctx, pkg); err != nil {
			s.logger.Error("failed to seed package", slog.String("name", pkg.Name), slog.Any("error", err))
			return models.ErrInternalServer
		}
	}

	s.logger.Info("package catalog seeded", slog.Int("count", len(defaults)))
	return nil
}
