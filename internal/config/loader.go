package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// EnvPrefix prefixes every environment variable override,
// e.g. TASKPILOT_TELEGRAM_TOKEN or TASKPILOT_REMINDER_HOUR.
const EnvPrefix = "TASKPILOT"

// LoadConfig builds the configuration from, in increasing priority:
//  1. default values
//  2. the YAML file at path (optional)
//  3. variables from a .env file next to the working directory (optional)
//  4. TASKPILOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.CodeConfig, "failed to load .env file", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, errs.Wrap(errs.CodeConfig, fmt.Sprintf("failed to read config file %s", path), err)
			}
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.Wrap(errs.CodeConfig, "failed to parse configuration", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errs.Wrap(errs.CodeConfig, "configuration validation failed", err)
	}

	return cfg, nil
}
