package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/copyfolio/api/internal/auth"
	"github.com/copyfolio/api/internal/models"
	pkghttp "github.com/copyfolio/api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// PackageServiceInterface defines the interface for package catalog logic
type PackageServiceInterface interface {
	CreatePackage(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListActivePackages(ctx context.Context) ([]*models.Package, error)
	ListAllPackages(ctx context.Context) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, id string, updates *models.PackageUpdate, actorID, ipAddress string) (*models.Package, error)
	DeletePackage(ctx context.Context, id, actorID, ipAddress string) error
}

// PackageHandler handles package catalog HTTP requests
type PackageHandler struct {
	service  PackageServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(service PackageServiceInterface, ipConfig *pkghttp.IPConfig) *PackageHandler {
	return &PackageHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// CreatePackageRequest represents the request body for creating a package
type CreatePackageRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"gte=0"`
	Currency     string   `json:"currency" validate:"omitempty,len=3"`
	Features     []string `json:"features"`
	Active       bool     `json:"active"`
	DisplayOrder int      `json:"display_order"`
}

// UpdatePackageRequest represents the request body for updating a package.
// Absent fields keep their stored values; zero price and inactive are valid
// updates, so the distinction matters.
type UpdatePackageRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency     *string  `json:"currency" validate:"omitempty,len=3"`
	Features     []string `json:"features"`
	Active       *bool    `json:"active"`
	DisplayOrder *int     `json:"display_order"`
}

// PackageResponse represents a package in the HTTP response
type PackageResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Features     []string `json:"features"`
	Active       bool     `json:"active"`
	DisplayOrder int      `json:"display_order"`
	CreatedAt    string   `json:"created_at"`
}

func packageModelToResponse(pkg *models.Package) *PackageResponse {
	return &PackageResponse{
		ID:           pkg.ID,
		Name:         pkg.Name,
		Description:  pkg.Description,
		Price:        pkg.Price,
		Currency:     pkg.Currency,
		Features:     pkg.Features,
		Active:       pkg.Active,
		DisplayOrder: pkg.DisplayOrder,
		CreatedAt:    pkg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListActive returns the public catalog, no token required.
func (h *PackageHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.service.ListActivePackages(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*PackageResponse, 0, len(pkgs))
	for _, pkg := range pkgs {
		resp = append(resp, packageModelToResponse(pkg))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// ListAll returns the full catalog, inactive packages included (admin only)
func (h *PackageHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.service.ListAllPackages(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*PackageResponse, 0, len(pkgs))
	for _, pkg := range pkgs {
		resp = append(resp, packageModelToResponse(pkg))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Get returns a single package, no token required.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pkg, err := h.service.GetPackage(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Package not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, packageModelToResponse(pkg))
}

// Create adds a package to the catalog (admin only)
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePackageRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	claims := auth.GetUserFromContext(r)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	created, err := h.service.CreatePackage(r.Context(), &models.Package{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Currency:     strings.ToUpper(req.Currency),
		Features:     models.FeatureList(req.Features),
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}, actorID, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A package with this name already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid package")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, packageModelToResponse(created))
}

// Update modifies a package (admin only)
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	claims := auth.GetUserFromContext(r)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	updates := &models.PackageUpdate{
		Description:  req.Description,
		Price:        req.Price,
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		updates.Name = &name
	}
	if req.Currency != nil {
		currency := strings.ToUpper(*req.Currency)
		updates.Currency = &currency
	}
	if req.Features != nil {
		updates.Features = models.FeatureList(req.Features)
	}

	updated, err := h.service.UpdatePackage(r.Context(), id, updates, actorID, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Package not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A package with this name already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, packageModelToResponse(updated))
}

// Delete removes a package from the catalog (admin only)
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims := auth.GetUserFromContext(r)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.service.DeletePackage(r.Context(), id, actorID, ipAddress); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Package not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
