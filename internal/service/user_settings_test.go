package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"halidom/internal/domain"
	"halidom/internal/domain/models"
)

type fakeUserSettingsRepo struct {
	saved map[uuid.UUID]*models.UserSettings
}

func newFakeUserSettingsRepo() *fakeUserSettingsRepo {
	return &fakeUserSettingsRepo{saved: make(map[uuid.UUID]*models.UserSettings)}
}

func (f *fakeUserSettingsRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	s, ok := f.saved[userID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (f *fakeUserSettingsRepo) Upsert(_ context.Context, settings *models.UserSettings) error {
	c := *settings
	f.saved[settings.UserID] = &c
	return nil
}

func testUserSettingsService() (*UserSettingsService, *fakeUserSettingsRepo) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeUserSettingsRepo()
	return NewUserSettingsService(repo, logger), repo
}

func TestUserSettingsGet_DefaultsWhenUnsaved(t *testing.T) {
	svc, repo := testUserSettingsService()
	userID := uuid.New()

	settings, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	site, err := settings.GetSite()
	if err != nil {
		t.Fatalf("GetSite failed: %v", err)
	}
	if site.Language != models.LanguageEN || site.Theme != "auto" {
		t.Errorf("unexpected defaults: %+v", site)
	}

	// Defaults are computed, not persisted.
	if len(repo.saved) != 0 {
		t.Error("Get persisted default settings")
	}
}

func TestUserSettingsUpdate_PartialNamespaces(t *testing.T) {
	svc, _ := testUserSettingsService()
	userID := uuid.New()

	_, err := svc.Update(context.Background(), userID, &models.UpdateSettingsRequest{
		Site: &models.SiteSettings{Language: models.LanguageJA, Theme: "dark"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// A later notifications-only update must not disturb the site namespace.
	yes := true
	settings, err := svc.Update(context.Background(), userID, &models.UpdateSettingsRequest{
		Notifications: &models.NotificationSettings{NewAnalyses: &yes},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	site, err := settings.GetSite()
	if err != nil {
		t.Fatalf("GetSite failed: %v", err)
	}
	if site.Language != models.LanguageJA || site.Theme != "dark" {
		t.Errorf("site namespace disturbed: %+v", site)
	}

	notif, err := settings.GetNotifications()
	if err != nil {
		t.Fatalf("GetNotifications failed: %v", err)
	}
	if notif.NewAnalyses == nil || !*notif.NewAnalyses {
		t.Errorf("notifications not applied: %+v", notif)
	}
}

func TestUserSettingsUpdate_RejectsUnsupportedLanguage(t *testing.T) {
	svc, repo := testUserSettingsService()

	_, err := svc.Update(context.Background(), uuid.New(), &models.UpdateSettingsRequest{
		Site: &models.SiteSettings{Language: "fr"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Error("rejected update was persisted")
	}
}
