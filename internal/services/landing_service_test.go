package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/copyfolio/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLandingService(repo *MockLandingRepository) *LandingService {
	audit, _ := newTestAuditService(&MockUserRepository{})
	return NewLandingService(repo, audit, discardLogger())
}

func TestLandingService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("not found before the first write", func(t *testing.T) {
		service := newTestLandingService(&MockLandingRepository{})

		_, err := service.Get(ctx)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("returns the stored document", func(t *testing.T) {
		mockRepo := &MockLandingRepository{
			GetFunc: func(ctx context.Context) (*models.LandingSettings, error) {
				return &models.LandingSettings{Content: json.RawMessage(`{"hero":"Copy the best"}`)}, nil
			},
		}
		service := newTestLandingService(mockRepo)

		settings, err := service.Get(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, `{"hero":"Copy the best"}`, string(settings.Content))
	})
}

func TestLandingService_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid JSON rejected", func(t *testing.T) {
		mockRepo := &MockLandingRepository{
			UpsertFunc: func(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error) {
				t.Fatal("invalid content must not reach the repo")
				return nil, nil
			},
		}
		service := newTestLandingService(mockRepo)

		_, err := service.Set(ctx, json.RawMessage(`{"hero":`), "", "")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("replaces the whole document", func(t *testing.T) {
		var stored json.RawMessage
		mockRepo := &MockLandingRepository{
			UpsertFunc: func(ctx context.Context, content json.RawMessage) (*models.LandingSettings, error) {
				stored = content
				return &models.LandingSettings{Content: content}, nil
			},
		}
		service := newTestLandingService(mockRepo)

		doc := json.RawMessage(`{"hero":"New headline","cta":"Start now"}`)
		settings, err := service.Set(ctx, doc, "", "10.0.0.1")

		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(stored))
		assert.JSONEq(t, string(doc), string(settings.Content))
	})
}
