package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/terraincognita07/totoro/internal/models"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrDisplayNameTooLong  = errors.New("display name too long")
)

const MaxDisplayNameLength = 64

type SettingsProfileRepository interface {
	Load() (models.Profile, error)
	UpdateDisplayName(displayName string) error
	UpdateLanguage(language string) error
}

type SettingsUpdate struct {
	DisplayName string
	Language    string
}

type SettingsService struct {
	profiles  SettingsProfileRepository
	languages []string
}

func NewSettingsService(profiles SettingsProfileRepository, languages []string) *SettingsService {
	return &SettingsService{profiles: profiles, languages: languages}
}

func (service *SettingsService) LoadSettings() (models.Profile, error) {
	profile, err := service.profiles.Load()
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		profile.DisplayName = models.DefaultDisplayName
	}
	return profile, nil
}

// SaveSettings applies the non-empty fields of update. Blank input leaves the
// stored value untouched.
func (service *SettingsService) SaveSettings(update SettingsUpdate) (models.Profile, error) {
	displayName := strings.TrimSpace(update.DisplayName)
	if len([]rune(displayName)) > MaxDisplayNameLength {
		return models.Profile{}, ErrDisplayNameTooLong
	}

	language := strings.ToLower(strings.TrimSpace(update.Language))
	if language != "" && !slices.Contains(service.languages, language) {
		return models.Profile{}, ErrUnsupportedLanguage
	}

	if displayName != "" {
		if err := service.profiles.UpdateDisplayName(displayName); err != nil {
			return models.Profile{}, fmt.Errorf("update display name: %w", err)
		}
	}
	if language != "" {
		if err := service.profiles.UpdateLanguage(language); err != nil {
			return models.Profile{}, fmt.Errorf("update language: %w", err)
		}
	}
	return service.LoadSettings()
}
