package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	pkghttp "github.com/copyfolio/api/pkg/http"
)

// landingMaxBodySize caps the landing document at 1 MiB.
const landingMaxBodySize = 1 << 20

// LandingServiceInterface defines the interface for landing settings logic
type LandingServiceInterface interface {
	Get(ctx context.Context) (*models.LandingSettings, error)
	Set(ctx context.Context, content json.RawMessage, actorID, ipAddress string) (*models.LandingSettings, error)
}

// LandingHandler handles the landing page settings document
type LandingHandler struct {
	service  LandingServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewLandingHandler creates a new LandingHandler
func NewLandingHandler(service LandingServiceInterface, ipConfig *pkghttp.IPConfig) *LandingHandler {
	return &LandingHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// LandingResponse represents the landing document in the HTTP response
type LandingResponse struct {
	Content   json.RawMessage `json:"content"`
	UpdatedAt string          `json:"updated_at"`
}

// Get returns the landing document, no token required.
func (h *LandingHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Landing settings not configured")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &LandingResponse{
		Content:   settings.Content,
		UpdatedAt: settings.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Put replaces the whole landing document (admin only)
func (h *LandingHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, landingMaxBodySize))
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	claims := auth.GetUserFromContext(r)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	settings, err := h.service.Set(r.Context(), json.RawMessage(body), actorID, ipAddress)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Body must be valid JSON")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &LandingResponse{
		Content:   settings.Content,
		UpdatedAt: settings.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
