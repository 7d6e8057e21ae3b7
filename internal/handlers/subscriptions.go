package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	pkghttp "github.com/copyfolio/api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// SubscriptionServiceInterface defines the interface for subscription business logic
type SubscriptionServiceInterface interface {
	Activate(ctx context.Context, userID, plan, ipAddress string) (*models.Subscription, error)
	Cancel(ctx context.Context, subscriptionID, requesterID, ipAddress string) (*models.Subscription, error)
	GetCurrent(ctx context.Context, userID string) (*models.Subscription, error)
	History(ctx context.Context, userID string) ([]*models.Subscription, error)
}

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	service  SubscriptionServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(service SubscriptionServiceInterface, ipConfig *pkghttp.IPConfig) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// ActivateRequest represents the request body for plan activation
type ActivateRequest struct {
	Plan string `json:"plan" validate:"required,oneof=Starter Pro Expert"`
}

// SubscriptionResponse represents a subscription in the HTTP response
type SubscriptionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Plan        string  `json:"plan"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	RenewalDate string  `json:"renewal_date"`
	EndDate     *string `json:"end_date,omitempty"`
}

func subscriptionModelToResponse(sub *models.Subscription) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:          sub.ID,
		UserID:      sub.UserID,
		Plan:        sub.Plan,
		Status:      sub.Status,
		StartDate:   sub.StartDate.Format("2006-01-02T15:04:05Z07:00"),
		RenewalDate: sub.RenewalDate.Format("2006-01-02"),
	}
	if sub.EndDate != nil {
		endDate := sub.EndDate.Format("2006-01-02T15:04:05Z07:00")
		resp.EndDate = &endDate
	}
	return resp
}

// Activate creates an Active subscription for the caller.
func (h *SubscriptionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	sub, err := h.service.Activate(r.Context(), claims.UserID, req.Plan, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSubscriptionConflict):
			pkghttp.WriteConflict(w, "An active subscription already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Unknown plan")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, subscriptionModelToResponse(sub))
}

// Cancel cancels the caller's subscription by ID.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	sub, err := h.service.Cancel(r.Context(), id, claims.UserID, ipAddress)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Subscription not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, subscriptionModelToResponse(sub))
}

// Current returns the caller's Active subscription.
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	sub, err := h.service.GetCurrent(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No active subscription")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, subscriptionModelToResponse(sub))
}

// History returns every subscription the caller has held.
func (h *SubscriptionHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	subs, err := h.service.History(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, subscriptionModelToResponse(sub))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
