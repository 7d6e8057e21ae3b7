package services

import (
	"context"
	"log/slog"

	"github.com/copyfolio/api/internal/models"
	"github.com/google/uuid"
)

// AuditLogRepository defines the interface for audit log persistence
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

// AuditService appends audit entries with a dual-write pattern (slog + database).
// Recording is best-effort: a failed database write is logged and swallowed so
// audit plumbing can never fail the operation being audited.
type AuditService struct {
	repo     AuditLogRepository
	userRepo UserRepository
	logger   *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditLogRepository, userRepo UserRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Record appends one audit entry. actorID that is empty, unparsable, or not a
// row in users (admins live in their own table) is stored as NULL rather than
// failing the write.
func (s *AuditService) Record(ctx context.Context, actorID, action, entityType string, entityID *string, changes models.AuditChanges, ipAddress string) {
	entry := &models.AuditLog{
		Action:  action,
		Changes: changes,
	}

	if entityType != "" {
		entry.EntityType = &entityType
	}
	entry.EntityID = entityID

	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}

	entry.ActorID = s.resolveActor(ctx, actorID)

	s.logger.Info("audit event",
		slog.String("action", action),
		slog.String("entity_type", entityType),
		slog.Any("actor_id", entry.ActorID),
		slog.Any("changes", changes),
	)

	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit log",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

// List returns a page of audit entries, newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	logs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list audit logs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return logs, nil
}

// ListByActor returns a page of audit entries for one actor, newest first. An
// unparsable actor ID is ErrBadRequest.
func (s *AuditService) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*models.AuditLog, error) {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil, models.ErrBadRequest
	}

	logs, err := s.repo.ListByActor(ctx, id, limit, offset)
	if err != nil {
		s.logger.Error("failed to list audit logs by actor",
			slog.String("actor_id", actorID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return logs, nil
}

func (s *AuditService) resolveActor(ctx context.Context, actorID string) *uuid.UUID {
	if actorID == "" {
		return nil
	}

	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}

	exists, err := s.userRepo.Exists(ctx, actorID)
	if err != nil || !exists {
		return nil
	}

	return &id
}
