package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "TOTORO"
	ConfigFileEnv = "TOTORO_CONFIG"
)

var ErrInsecureSecretKey = errors.New("auth.secret_key uses a placeholder value")

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("database.path", filepath.Join("data", "totoro.db"))
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("i18n.default_language", "en")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.period_reminder_enabled", true)
	v.SetDefault("telegram.fertility_reminder_enabled", true)
	v.SetDefault("telegram.interval", 6*time.Hour)
}

// Load reads configuration from TOTORO_* environment variables and, when
// TOTORO_CONFIG names a file, from that file. Environment values win.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.I18n.DefaultLanguage = strings.ToLower(strings.TrimSpace(cfg.I18n.DefaultLanguage))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(strings.TrimSpace(cfg.Auth.SecretKey))]; insecure {
		return ErrInsecureSecretKey
	}
	return nil
}
