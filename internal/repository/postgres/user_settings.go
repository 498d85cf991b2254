package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// PostgresUserSettingsRepository implements the UserSettingsRepository interface
type PostgresUserSettingsRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserSettingsRepository creates a new PostgresUserSettingsRepository
func NewUserSettingsRepository(config *RepositoryConfig) repositories.UserSettingsRepository {
	return &PostgresUserSettingsRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByUserID retrieves settings for a specific user
func (r *PostgresUserSettingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	query := fmt.Sprintf(`
		SELECT user_id, settings, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.UserSettings)

	var settings models.UserSettings
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.Settings,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			// No settings exist yet - return nil (not an error)
			return nil, nil
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}

	return &settings, nil
}

// Upsert creates or updates user settings
func (r *PostgresUserSettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, settings, created_at, updated_at
	`, r.tables.UserSettings)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		settings.UserID,
		settings.Settings,
		settings.CreatedAt,
		settings.UpdatedAt,
	).Scan(
		&settings.UserID,
		&settings.Settings,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}

	return nil
}
