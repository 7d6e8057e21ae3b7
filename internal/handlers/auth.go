package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	"github.com/copyfolio/api/internal/services"
	pkghttp "github.com/copyfolio/api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, userAgent, ipAddress string) (*services.AuthResponse, error)
	AdminLogin(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	Verify(ctx context.Context, token, sessionToken string) (*models.TokenClaims, error)
	Logout(ctx context.Context, sessionToken, ipAddress string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LogoutRequest represents the request body for logout
type LogoutRequest struct {
	SessionToken string `json:"session_token"`
}

// VerifyResponse represents the identity carried by a valid token
type VerifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password, userAgent, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// AdminLogin handles admin login against the admins table
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	authResp, err := h.service.AdminLogin(r.Context(), req.Email, req.Password, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Account is not active")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// Verify returns the identity carried by the presented bearer token. The
// optional X-Session-Token header lets the service refresh the session's
// activity timestamp.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || token == "" {
		pkghttp.WriteUnauthorized(w, "Missing bearer token")
		return
	}

	claims, err := h.service.Verify(r.Context(), token, r.Header.Get("X-Session-Token"))
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &VerifyResponse{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
}

// Logout deletes the caller's opaque session. Absent or already-gone sessions
// still return 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req LogoutRequest
	// Body is optional; a logout without a session token is still a logout.
	_ = json.NewDecoder(r.Body).Decode(&req)

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.service.Logout(r.Context(), req.SessionToken, ipAddress); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
