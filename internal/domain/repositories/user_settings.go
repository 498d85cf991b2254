package repositories

import (
	"context"

	"github.com/google/uuid"

	"halidom/internal/domain/models"
)

// UserSettingsRepository is the store access for per-user configuration.
type UserSettingsRepository interface {
	// GetByUserID retrieves settings for a user. Returns (nil, nil) when the
	// user has never saved any.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)

	// Upsert creates or replaces the settings document for a user.
	Upsert(ctx context.Context, settings *models.UserSettings) error
}
