package repositories

import (
	"context"
	"time"

	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository reads the admins table. Rows are only ever written by the
// provisioning command, so there is no update or delete surface here.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

const adminCols = `id, email, password_hash, name, role, status, created_at, updated_at`

func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin

	err := scanner.Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name,
		&admin.Role, &admin.Status, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &admin, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminCols + ` FROM admins WHERE email = $1`
	return scanAdminRow(r.pool.QueryRow(ctx, query, email))
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	if admin.Status == "" {
		admin.Status = models.StatusActive
	}

	query := `
		INSERT INTO admins (id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + adminCols

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name,
		admin.Role, admin.Status, admin.CreatedAt, admin.UpdatedAt,
	))
}
