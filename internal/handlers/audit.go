package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/copyfolio/api/internal/models"
	pkghttp "github.com/copyfolio/api/pkg/http"
)

// AuditServiceInterface defines the interface for reading the audit log
type AuditServiceInterface interface {
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*models.AuditLog, error)
}

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	service AuditServiceInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditServiceInterface) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// AuditLogResponse represents an audit entry in the HTTP response
type AuditLogResponse struct {
	ID         string                 `json:"id"`
	ActorID    *string                `json:"actor_id,omitempty"`
	Action     string                 `json:"action"`
	EntityType *string                `json:"entity_type,omitempty"`
	EntityID   *string                `json:"entity_id,omitempty"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	IPAddress  *string                `json:"ip_address,omitempty"`
	CreatedAt  string                 `json:"created_at"`
}

// ListAuditLogsResponse represents a page of audit entries. Count is the size
// of this page, not the table total.
type ListAuditLogsResponse struct {
	Logs  []*AuditLogResponse `json:"logs"`
	Count int                 `json:"count"`
}

func auditLogModelToResponse(log *models.AuditLog) *AuditLogResponse {
	resp := &AuditLogResponse{
		ID:         log.ID.String(),
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Changes:    log.Changes,
		IPAddress:  log.IPAddress,
		CreatedAt:  log.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if log.ActorID != nil {
		actorID := log.ActorID.String()
		resp.ActorID = &actorID
	}
	return resp
}

// List returns a page of audit entries, newest first, optionally filtered by
// ?actor_id= (superadmin only)
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 50)

	var logs []*models.AuditLog
	var err error
	if actorID := r.URL.Query().Get("actor_id"); actorID != "" {
		logs, err = h.service.ListByActor(r.Context(), actorID, limit, offset)
	} else {
		logs, err = h.service.List(r.Context(), limit, offset)
	}
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "actor_id must be a UUID")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := &ListAuditLogsResponse{
		Logs:  make([]*AuditLogResponse, 0, len(logs)),
		Count: len(logs),
	}
	for _, log := range logs {
		resp.Logs = append(resp.Logs, auditLogModelToResponse(log))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
