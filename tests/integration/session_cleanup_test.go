package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyfolio/api/internal/repositories"
)

func TestDeleteExpiredSessions(t *testing.T) {
	resetDatabase(t)

	ctx := context.Background()
	email, password := TestUserCredentials("session-cleanup")
	user, err := SeedUser(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	sessionRepo := repositories.NewSessionRepository(testDB.DB)

	// One expired session, one live session
	_, err = SeedExpiredSession(ctx, testDB.Pool, user.ID)
	require.NoError(t, err)

	_, err = testDB.Pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, user_agent, ip_address, expires_at, last_activity, created_at)
		VALUES (gen_random_uuid(), $1, $2, 'test-agent', '127.0.0.1', $3, NOW(), NOW())
	`, user.ID, "live-session-token", time.Now().Add(1*time.Hour))
	require.NoError(t, err)

	deleted, err := sessionRepo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Only the live session survives
	var count int
	require.NoError(t, testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE user_id = $1`, user.ID).Scan(&count))
	assert.Equal(t, 1, count)

	// Pruning again is a no-op
	deleted, err = sessionRepo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestExpiredSessionRejectedOnLookup(t *testing.T) {
	resetDatabase(t)

	ctx := context.Background()
	email, password := TestUserCredentials("session-expired")
	user, err := SeedUser(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	token, err := SeedExpiredSession(ctx, testDB.Pool, user.ID)
	require.NoError(t, err)

	// Expired sessions are invisible even before the pruner runs
	sessionRepo := repositories.NewSessionRepository(testDB.DB)
	_, err = sessionRepo.GetByToken(ctx, token)
	assert.Error(t, err)
}
