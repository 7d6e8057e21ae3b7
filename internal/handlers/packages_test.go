package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/copyfolio/api/internal/handlers"
	"github.com/copyfolio/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivePackages_Public(t *testing.T) {
	mockService := &handlers.MockPackageService{
		ListActivePackagesFunc: func(ctx context.Context) ([]*models.Package, error) {
			return []*models.Package{
				{ID: "pkg-1", Name: "Starter", Price: 0, Currency: "USD", DisplayOrder: 1, Active: true,
					Features: models.FeatureList{"Copy 1 trader"}},
				{ID: "pkg-2", Name: "Pro", Price: 49, Currency: "USD", DisplayOrder: 2, Active: true,
					Features: models.FeatureList{"Copy up to 5 traders"}},
			}, nil
		},
	}

	handler := handlers.NewPackageHandler(mockService, nil)
	// No auth context: the public catalog needs no token.
	req := handlers.NewTestRequest(t, "GET", "/api/packages", nil)

	w := httptest.NewRecorder()
	handler.ListActive(w, req)

	var resp []*handlers.PackageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Len(t, resp, 2)
	assert.Equal(t, "Starter", resp[0].Name)
	assert.Equal(t, []string{"Copy up to 5 traders"}, resp[1].Features)
}

func TestCreatePackage_DuplicateName(t *testing.T) {
	mockService := &handlers.MockPackageService{
		CreatePackageFunc: func(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewPackageHandler(mockService, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/admin/packages", handlers.CreatePackageRequest{
		Name:  "Pro",
		Price: 49,
	})
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, 409, "conflict")
}

func TestCreatePackage_NegativePrice(t *testing.T) {
	handler := handlers.NewPackageHandler(&handlers.MockPackageService{}, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/admin/packages", handlers.CreatePackageRequest{
		Name:  "Pro",
		Price: -10,
	})
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestCreatePackage_Success(t *testing.T) {
	mockService := &handlers.MockPackageService{
		CreatePackageFunc: func(ctx context.Context, pkg *models.Package, actorID, ipAddress string) (*models.Package, error) {
			assert.Equal(t, "admin-1", actorID)
			assert.Equal(t, "USD", pkg.Currency)
			pkg.ID = "pkg-new"
			return pkg, nil
		},
	}

	handler := handlers.NewPackageHandler(mockService, nil)
	req := handlers.NewTestRequest(t, "POST", "/api/admin/packages", handlers.CreatePackageRequest{
		Name:     "Expert",
		Price:    99,
		Currency: "usd",
		Features: []string{"Copy unlimited traders", "Dedicated support"},
		Active:   true,
	})
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.Create(w, req)

	var resp handlers.PackageResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "pkg-new", resp.ID)
	assert.True(t, resp.Active)
}

func TestUpdatePackage_NotFound(t *testing.T) {
	name := "Renamed"
	handler := handlers.NewPackageHandler(&handlers.MockPackageService{}, nil)
	req := handlers.NewTestRequest(t, "PUT", "/api/admin/packages/missing", handlers.UpdatePackageRequest{
		Name: &name,
	})
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")
	req = withURLParam(req, "id", "missing")

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestUpdatePackage_AbsentFieldsStayNil(t *testing.T) {
	var gotUpdates *models.PackageUpdate
	mockService := &handlers.MockPackageService{
		UpdatePackageFunc: func(ctx context.Context, id string, updates *models.PackageUpdate, actorID, ipAddress string) (*models.Package, error) {
			gotUpdates = updates
			return &models.Package{ID: id, Name: *updates.Name, Price: 49, Active: true, DisplayOrder: 2}, nil
		},
	}

	name := "Pro Plus"
	handler := handlers.NewPackageHandler(mockService, nil)
	req := handlers.NewTestRequest(t, "PUT", "/api/admin/packages/pkg-1", handlers.UpdatePackageRequest{
		Name: &name,
	})
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")
	req = withURLParam(req, "id", "pkg-1")

	w := httptest.NewRecorder()
	handler.Update(w, req)

	var resp handlers.PackageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)

	// A rename-only request must not carry values for the other fields
	require.NotNil(t, gotUpdates.Name)
	assert.Equal(t, "Pro Plus", *gotUpdates.Name)
	assert.Nil(t, gotUpdates.Price)
	assert.Nil(t, gotUpdates.Active)
	assert.Nil(t, gotUpdates.DisplayOrder)
	assert.Nil(t, gotUpdates.Description)
	assert.Nil(t, gotUpdates.Currency)
	assert.Nil(t, gotUpdates.Features)
}

func TestDeletePackage_Success(t *testing.T) {
	var deleted string
	mockService := &handlers.MockPackageService{
		DeletePackageFunc: func(ctx context.Context, id, actorID, ipAddress string) error {
			deleted = id
			return nil
		},
	}

	handler := handlers.NewPackageHandler(mockService, nil)
	req := handlers.NewTestRequest(t, "DELETE", "/api/admin/packages/pkg-1", nil)
	req = handlers.WithAdminContext(req, "admin-1", "admin@example.com")
	req = withURLParam(req, "id", "pkg-1")

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "pkg-1", deleted)
}
