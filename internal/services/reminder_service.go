package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/models"
)

type ReminderStatsReader interface {
	Stats() (cycle.Statistics, error)
}

type ReminderProfileReader interface {
	Load() (models.Profile, error)
}

type ReminderTranslator interface {
	NormalizeLanguage(raw string) string
	Translate(language string, key string) string
	Translatef(language string, key string, args ...any) string
}

// ReminderSet is the projected reminders together with the profile they
// were phrased for.
type ReminderSet struct {
	DisplayName string
	Language    string
	Reminders   []cycle.Reminder
}

type ReminderService struct {
	stats      ReminderStatsReader
	profiles   ReminderProfileReader
	translator ReminderTranslator
}

func NewReminderService(stats ReminderStatsReader, profiles ReminderProfileReader, translator ReminderTranslator) *ReminderService {
	return &ReminderService{stats: stats, profiles: profiles, translator: translator}
}

func (service *ReminderService) Reminders() (ReminderSet, error) {
	stats, err := service.stats.Stats()
	if err != nil {
		return ReminderSet{}, err
	}
	profile, err := service.profiles.Load()
	if err != nil {
		return ReminderSet{}, fmt.Errorf("load profile: %w", err)
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = models.DefaultDisplayName
	}
	language := profile.Language
	var format cycle.ReminderFormatter
	if service.translator != nil {
		language = service.translator.NormalizeLanguage(language)
		format = TranslatedReminderText(service.translator, language)
	}

	return ReminderSet{
		DisplayName: displayName,
		Language:    language,
		Reminders:   cycle.Reminders(stats, displayName, format),
	}, nil
}

// DueOn returns the reminders whose fire day is day.
func (service *ReminderService) DueOn(day time.Time) (ReminderSet, error) {
	set, err := service.Reminders()
	if err != nil {
		return ReminderSet{}, err
	}
	set.Reminders = cycle.DueOn(set.Reminders, day)
	return set, nil
}

// Feed renders the current reminders as an iCalendar document.
func (service *ReminderService) Feed(now time.Time) ([]byte, error) {
	set, err := service.Reminders()
	if err != nil {
		return nil, err
	}

	calendarName := set.DisplayName
	if service.translator != nil {
		calendarName = service.translator.Translatef(set.Language, "feed.calendar_name", set.DisplayName)
	}
	return BuildReminderFeed(set.Reminders, calendarName, now)
}

func TranslatedReminderText(translator ReminderTranslator, language string) cycle.ReminderFormatter {
	return func(kind cycle.ReminderKind, displayName string) (string, string) {
		prefix := "reminder." + string(kind)
		return translator.Translate(language, prefix+".title"), translator.Translatef(language, prefix+".body", displayName)
	}
}
