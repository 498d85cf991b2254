package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserSettings represents per-user site configuration.
// All settings live in a single namespaced JSONB column.
type UserSettings struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Settings  JSONMap   `json:"settings" db:"settings"` // Namespaced JSONB: {site, notifications}
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SiteSettings is the site namespace in settings.
type SiteSettings struct {
	Language string `json:"language"` // preferred content language code
	Theme    string `json:"theme"`    // "light", "dark", "auto"
}

// NotificationSettings is the notifications namespace in settings.
type NotificationSettings struct {
	EmailUpdates *bool `json:"email_updates"` // Pointer to allow null
	NewAnalyses  *bool `json:"new_analyses"`  // Pointer to allow null
}

// GetSite extracts the site namespace from settings with type safety.
func (us *UserSettings) GetSite() (*SiteSettings, error) {
	fallback := &SiteSettings{Language: LanguageEN, Theme: "auto"}
	if us.Settings == nil {
		return fallback, nil
	}

	siteData, ok := us.Settings["site"]
	if !ok {
		return fallback, nil
	}

	// Re-marshal to ensure type safety
	data, err := json.Marshal(siteData)
	if err != nil {
		return nil, err
	}

	var site SiteSettings
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, err
	}
	if site.Language == "" {
		site.Language = LanguageEN
	}
	if site.Theme == "" {
		site.Theme = "auto"
	}

	return &site, nil
}

// SetSite sets the site namespace in settings.
func (us *UserSettings) SetSite(site *SiteSettings) error {
	if us.Settings == nil {
		us.Settings = JSONMap{}
	}

	data, err := json.Marshal(site)
	if err != nil {
		return err
	}

	var siteMap map[string]interface{}
	if err := json.Unmarshal(data, &siteMap); err != nil {
		return err
	}

	us.Settings["site"] = siteMap
	return nil
}

// GetNotifications extracts the notifications namespace from settings.
func (us *UserSettings) GetNotifications() (*NotificationSettings, error) {
	if us.Settings == nil {
		return &NotificationSettings{}, nil
	}

	notifData, ok := us.Settings["notifications"]
	if !ok {
		return &NotificationSettings{}, nil
	}

	data, err := json.Marshal(notifData)
	if err != nil {
		return nil, err
	}

	var notif NotificationSettings
	if err := json.Unmarshal(data, &notif); err != nil {
		return nil, err
	}

	return &notif, nil
}

// SetNotifications sets the notifications namespace in settings.
func (us *UserSettings) SetNotifications(notif *NotificationSettings) error {
	if us.Settings == nil {
		us.Settings = JSONMap{}
	}

	data, err := json.Marshal(notif)
	if err != nil {
		return err
	}

	var notifMap map[string]interface{}
	if err := json.Unmarshal(data, &notifMap); err != nil {
		return err
	}

	us.Settings["notifications"] = notifMap
	return nil
}

// UpdateSettingsRequest represents a partial settings update.
// Only provided namespaces are replaced.
type UpdateSettingsRequest struct {
	Site          *SiteSettings         `json:"site"`
	Notifications *NotificationSettings `json:"notifications"`
}
