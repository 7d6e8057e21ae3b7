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

type SubscriptionRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, pool: db.Pool}
}

const subscriptionCols = `id, user_id, plan, status, renewal_date, start_date, end_date, created_at, updated_at`

func scanSubscriptionRow(scanner rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var endDate *time.Time

	err := scanner.Scan(
		&sub.ID, &sub.UserID, &sub.Plan, &sub.Status,
		&sub.RenewalDate, &sub.StartDate, &endDate,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	sub.EndDate = endDate
	return &sub, nil
}

func scanSubscriptionRows(rows pgx.Rows) ([]*models.Subscription, error) {
	defer rows.Close()

	subs := make([]*models.Subscription, 0)

	for rows.Next() {
		sub, err := scanSubscriptionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subs, nil
}

// CreateWithPlan inserts a new Active subscription row and advances the
// owner's plan column in the same transaction, so a failed plan write never
// leaves an Active subscription behind. The partial unique index on (user_id)
// WHERE status = 'Active' rejects a second concurrent activation; the
// violation surfaces as ErrSubscriptionConflict.
func (r *SubscriptionRepository) CreateWithPlan(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	sub.ID = uuid.New().String()

	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if sub.Status == "" {
		sub.Status = models.SubscriptionActive
	}
	if sub.StartDate.IsZero() {
		sub.StartDate = now
	}
	if sub.RenewalDate.IsZero() {
		sub.RenewalDate = models.NextRenewal(now)
	}

	query := `
		INSERT INTO subscriptions (id, user_id, plan, status, renewal_date, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + subscriptionCols

	var created *models.Subscription
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		created, txErr = scanSubscriptionRow(tx.QueryRow(ctx, query,
			sub.ID, sub.UserID, sub.Plan, sub.Status,
			sub.RenewalDate, sub.StartDate, sub.EndDate,
			sub.CreatedAt, sub.UpdatedAt,
		))
		if txErr != nil {
			return txErr
		}

		_, txErr = tx.Exec(ctx, `UPDATE users SET plan = $1, updated_at = $2 WHERE id = $3`,
			sub.Plan, now, sub.UserID)
		return database.MapPostgresError(txErr)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE id = $1`
	return scanSubscriptionRow(r.pool.QueryRow(ctx, query, id))
}

func (r *SubscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE user_id = $1 AND status = $2`
	return scanSubscriptionRow(r.pool.QueryRow(ctx, query, userID, models.SubscriptionActive))
}

func (r *SubscriptionRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Subscription, error) {
	query := `SELECT ` + subscriptionCols + ` FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	return scanSubscriptionRows(rows)
}

// CancelWithPlanReset flips the subscription to Cancelled, stamps the end
// date, and resets the owner's plan in the same transaction. Rows are never
// physically deleted.
func (r *SubscriptionRepository) CancelWithPlanReset(ctx context.Context, id, resetPlan string) (*models.Subscription, error) {
	now := time.Now()

	query := `
		UPDATE subscriptions SET status = $1, end_date = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + subscriptionCols

	var cancelled *models.Subscription
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		cancelled, txErr = scanSubscriptionRow(tx.QueryRow(ctx, query,
			models.SubscriptionCancelled, now, now, id))
		if txErr != nil {
			return txErr
		}

		_, txErr = tx.Exec(ctx, `UPDATE users SET plan = $1, updated_at = $2 WHERE id = $3`,
			resetPlan, now, cancelled.UserID)
		return database.MapPostgresError(txErr)
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}
