package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// UserSettingsService manages per-user site configuration.
type UserSettingsService struct {
	repo   repositories.UserSettingsRepository
	logger *slog.Logger
}

// NewUserSettingsService creates a new user settings service
func NewUserSettingsService(repo repositories.UserSettingsRepository, logger *slog.Logger) *UserSettingsService {
	return &UserSettingsService{
		repo:   repo,
		logger: logger,
	}
}

// Get retrieves a user's settings, returning defaults when none are saved.
func (s *UserSettingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	settings, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		now := time.Now().UTC()
		settings = &models.UserSettings{
			UserID:    userID,
			Settings:  models.JSONMap{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		site := &models.SiteSettings{Language: models.LanguageEN, Theme: "auto"}
		if err := settings.SetSite(site); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// Update applies a partial settings update; only provided namespaces are
// replaced.
func (s *UserSettingsService) Update(ctx context.Context, userID uuid.UUID, req *models.UpdateSettingsRequest) (*models.UserSettings, error) {
	if req.Site != nil && req.Site.Language != "" && !models.IsSupportedLanguage(req.Site.Language) {
		return nil, fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, req.Site.Language)
	}

	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Site != nil {
		if err := settings.SetSite(req.Site); err != nil {
			return nil, err
		}
	}
	if req.Notifications != nil {
		if err := settings.SetNotifications(req.Notifications); err != nil {
			return nil, err
		}
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Debug("user settings updated", "user_id", userID)
	return settings, nil
}
