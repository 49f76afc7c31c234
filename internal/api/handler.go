package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/totoro/internal/db"
	"github.com/terraincognita07/totoro/internal/i18n"
	"github.com/terraincognita07/totoro/internal/services"
	"gorm.io/gorm"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// Options carries the runtime settings the HTTP layer needs beyond storage.
type Options struct {
	SecretKey    string
	TokenTTL     time.Duration
	Location     *time.Location
	CookieSecure bool
	Logger       *slog.Logger
}

type Handler struct {
	cycles       *services.CycleService
	reminders    *services.ReminderService
	settings     *services.SettingsService
	auth         *services.AuthService
	i18n         *i18n.Manager
	validate     *validator.Validate
	limiter      *attemptLimiter
	logger       *slog.Logger
	secretKey    []byte
	tokenTTL     time.Duration
	location     *time.Location
	cookieSecure bool
	now          func() time.Time
}

func NewHandler(database *gorm.DB, i18nManager *i18n.Manager, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	secretKey := strings.TrimSpace(options.SecretKey)
	if secretKey == "" {
		return nil, errors.New("secret key is required")
	}

	tokenTTL := options.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	location := options.Location
	if location == nil {
		location = time.UTC
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repositories := db.NewRepositories(database)
	cycles := services.NewCycleService(repositories.Cycles)

	return &Handler{
		cycles:       cycles,
		reminders:    services.NewReminderService(cycles, repositories.Profiles, i18nManager),
		settings:     services.NewSettingsService(repositories.Profiles, i18nManager.SupportedLanguages()),
		auth:         services.NewAuthService(repositories.Profiles),
		i18n:         i18nManager,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		limiter:      newAttemptLimiter(passphraseAttemptLimit, passphraseAttemptWindow),
		logger:       logger.With("component", "api"),
		secretKey:    []byte(secretKey),
		tokenTTL:     tokenTTL,
		location:     location,
		cookieSecure: options.CookieSecure,
		now:          time.Now,
	}, nil
}

// Reminders exposes the reminder projection so the notifier shares the
// handler's services.
func (handler *Handler) Reminders() *services.ReminderService {
	return handler.reminders
}

// today is the current calendar day in the configured time zone.
func (handler *Handler) today() time.Time {
	return handler.now().In(handler.location)
}
