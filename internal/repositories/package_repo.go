package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackageRepository struct {
	pool *pgxpool.Pool
}

func NewPackageRepository(db *database.DB) *PackageRepository {
	return &PackageRepository{pool: db.Pool}
}

const packageCols = `id, name, description, price, currency, features, active, display_order, created_by, created_at, updated_at`

func scanPackageRow(scanner rowScanner) (*models.Package, error) {
	var pkg models.Package
	var createdBy *string

	err := scanner.Scan(
		&pkg.ID, &pkg.Name, &pkg.Description, &pkg.Price, &pkg.Currency,
		&pkg.Features, &pkg.Active, &pkg.DisplayOrder, &createdBy,
		&pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	pkg.CreatedBy = createdBy
	return &pkg, nil
}

func scanPackageRows(rows pgx.Rows) ([]*models.Package, error) {
	defer rows.Close()

	pkgs := make([]*models.Package, 0)

	for rows.Next() {
		pkg, err := scanPackageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return pkgs, nil
}

func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	pkg.ID = uuid.New().String()

	now := time.Now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	if pkg.Currency == "" {
		pkg.Currency = "USD"
	}

	query := `
		INSERT INTO packages (id, name, description, price, currency, features, active, display_order, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + packageCols

	return scanPackageRow(r.pool.QueryRow(ctx, query,
		pkg.ID, pkg.Name, pkg.Description, pkg.Price, pkg.Currency,
		pkg.Features, pkg.Active, pkg.DisplayOrder, pkg.CreatedBy,
		pkg.CreatedAt, pkg.UpdatedAt,
	))
}

func (r *PackageRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	query := `SELECT ` + packageCols + ` FROM packages WHERE id = $1`
	return scanPackageRow(r.pool.QueryRow(ctx, query, id))
}

// ListActive returns publicly visible packages in display order.
func (r *PackageRepository) ListActive(ctx context.Context) ([]*models.Package, error) {
	query := `
		SELECT ` + packageCols + ` FROM packages
		WHERE active = TRUE
		ORDER BY display_order ASC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}

	return scanPackageRows(rows)
}

// List returns every package, active or not, for the admin catalog view.
func (r *PackageRepository) List(ctx context.Context) ([]*models.Package, error) {
	query := `SELECT ` + packageCols + ` FROM packages ORDER BY display_order ASC, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}

	return scanPackageRows(rows)
}

func (r *PackageRepository) Update(ctx context.Context, id string, pkg *models.Package) (*models.Package, error) {
	pkg.UpdatedAt = time.Now()

	query := `
		UPDATE packages
		SET name = $1, description = $2, price = $3, currency = $4, features = $5,
		    active = $6, display_order = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + packageCols

	return scanPackageRow(r.pool.QueryRow(ctx, query,
		pkg.Name, pkg.Description, pkg.Price, pkg.Currency, pkg.Features,
		pkg.Active, pkg.DisplayOrder, pkg.UpdatedAt, id,
	))
}

func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM packages WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PackageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM packages`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
