package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/copyfolio/api/internal/models"
)

// LandingRepository defines the interface for the landing settings singleton
type LandingRepository interface {
	Get(ctx context.Context) (*models.LandingSettings, error)
	Upsert(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error)
}

// LandingService handles the editable landing page document
type LandingService struct {
	repo   LandingRepository
	audit  *AuditService
	logger *slog.Logger
}

// NewLandingService creates a new LandingService
func NewLandingService(repo LandingRepository, audit *AuditService, logger *slog.Logger) *LandingService {
	return &LandingService{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// Get returns the current document, or ErrNotFound before the first write.
func (s *LandingService) Get(ctx context.Context) (*models.LandingSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get landing settings", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return settings, nil
}

// Set replaces the whole document. No partial merge; the UI layer decides
// what the document contains before calling.
func (s *LandingService) Set(ctx context.Context, content json.RawMessage, actorID, ipAddress string) (*models.LandingSettings, error) {
	if !json.Valid(content) {
		return nil, models.ErrBadRequest
	}

	settings, err := s.repo.Upsert(ctx, content)
	if err != nil {
		s.logger.Error("failed to upsert landing settings", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("landing settings updated")
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, models.AuditEntityLanding, nil, nil, ipAddress)

	return settings, nil
}
