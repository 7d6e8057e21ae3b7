package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/copyfolio/api/internal/database"
	"github.com/copyfolio/api/internal/models"
	pkgauth "github.com/copyfolio/api/pkg/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository persists the opaque server-side sessions that parallel
// the signed bearer tokens.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{pool: db.Pool}
}

const sessionCols = `id, user_id, token, user_agent, ip_address, expires_at, last_activity, created_at`

func scanSessionRow(scanner rowScanner) (*models.Session, error) {
	var s models.Session

	err := scanner.Scan(
		&s.ID, &s.UserID, &s.Token, &s.UserAgent, &s.IPAddress,
		&s.ExpiresAt, &s.LastActivity, &s.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

// Create stores a new session with a crypto-random token and an explicit
// expiry.
func (r *SessionRepository) Create(ctx context.Context, userID, userAgent, ipAddress string, ttl time.Duration) (*models.Session, error) {
	token, err := pkgauth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Token:        token,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		CreatedAt:    now,
	}

	query := `
		INSERT INTO sessions (id, user_id, token, user_agent, ip_address, expires_at, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sessionCols

	return scanSessionRow(r.pool.QueryRow(ctx, query,
		session.ID, session.UserID, session.Token, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.LastActivity, session.CreatedAt,
	))
}

// GetByToken resolves a live session. A row past its expiry is treated as
// absent even when it still physically exists.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT ` + sessionCols + ` FROM sessions WHERE token = $1 AND expires_at > NOW()`
	return scanSessionRow(r.pool.QueryRow(ctx, query, token))
}

// Touch records activity on a session.
func (r *SessionRepository) Touch(ctx context.Context, token string) error {
	query := `UPDATE sessions SET last_activity = NOW() WHERE token = $1`

	_, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	result, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// DeleteExpired reaps sessions past their expiry. This is the maintenance
// sweep the cleanup manager calls on an interval; nothing else prunes.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
