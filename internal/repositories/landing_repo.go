package repositories

import (
	"context"
	"encoding/json"

	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LandingRepository stores the single-row landing page document. The table's
// primary key is a bool constrained to TRUE, so a second row can never exist.
type LandingRepository struct {
	pool *pgxpool.Pool
}

func NewLandingRepository(db *database.DB) *LandingRepository {
	return &LandingRepository{pool: db.Pool}
}

func (r *LandingRepository) Get(ctx context.Context) (*models.LandingSettings, error) {
	var settings models.LandingSettings
	var content []byte

	query := `SELECT content, updated_at FROM landing_settings WHERE singleton = TRUE`

	err := r.pool.QueryRow(ctx, query).Scan(&content, &settings.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	settings.Content = json.RawMessage(content)
	return &settings, nil
}

// Upsert replaces the whole document, inserting on first write.
func (r *LandingRepository) Upsert(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error) {
	var settings models.LandingSettings
	var stored []byte

	query := `
		INSERT INTO landing_settings (singleton, content, updated_at)
		VALUES (TRUE, $1, NOW())
		ON CONFLICT (singleton) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
		RETURNING content, updated_at
	`

	err := r.pool.QueryRow(ctx, query, []byte(content)).Scan(&stored, &settings.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	settings.Content = json.RawMessage(stored)
	return &settings, nil
}
