package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	DatabaseURL    string `mapstructure:"database_url" validate:"required"`
	RecurrenceTime string `mapstructure:"recurrence_time" validate:"required,hhmm"`
	DigestTime     string `mapstructure:"digest_time" validate:"omitempty,hhmm"`
	Timezone       string `mapstructure:"timezone" validate:"required,tz"`
	PageSize       int    `mapstructure:"page_size" validate:"min=1,max=20"`
	LogLevel       string `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "taskbot.yaml"

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

var defaults = map[string]interface{}{
	"database_url":    "taskbot.db",
	"recurrence_time": "07:50",
	"digest_time":     "",
	"timezone":        "Local",
	"page_size":       5,
	"log_level":       "warn",
}

// Load reads configuration from environment variables, falling back to an
// optional YAML file and then to defaults. path may be empty, in which case
// DefaultFile in the working directory is used if present.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range []string{"telegram_token", "database_url", "recurrence_time", "digest_time", "timezone", "page_size", "log_level"} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if err := newValidator().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// RequireTelegram fails when no bot token is configured.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("tz", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	return validate
}
