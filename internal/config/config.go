// Package config loads runtime settings from the environment and an optional
// YAML file.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	I18n     I18nConfig     `mapstructure:"i18n" validate:"required"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Timezone     string `mapstructure:"timezone" validate:"required,timezone"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig signs owner tokens. An empty key is replaced by a random one at
// startup, which invalidates issued tokens on every restart.
type AuthConfig struct {
	SecretKey string        `mapstructure:"secret_key" validate:"omitempty,min=32"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language" validate:"required,oneof=en ru"`
}

type TelegramConfig struct {
	BotToken                 string        `mapstructure:"bot_token"`
	ChatID                   string        `mapstructure:"chat_id" validate:"required_with=BotToken"`
	PeriodReminderEnabled    bool          `mapstructure:"period_reminder_enabled"`
	FertilityReminderEnabled bool          `mapstructure:"fertility_reminder_enabled"`
	Interval                 time.Duration `mapstructure:"interval" validate:"gte=0"`
}

// Location resolves the configured time zone used to decide "today".
func (cfg *Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}
