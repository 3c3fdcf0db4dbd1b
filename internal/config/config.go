// Package config provides configuration loading and validation for the
// exporter. It uses koanf to merge an optional YAML file with environment
// variables; CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the exporter.
type Config struct {
	// Query
	Enterprise string `koanf:"enterprise"`
	StartDate  string `koanf:"start_date"` // created:>= filter, e.g. 2025-03-18
	Action     string `koanf:"action"`     // action filter, e.g. git.clone
	Include    string `koanf:"include"`    // web | git | all

	// Output
	Format     string `koanf:"format"` // csv | json
	OutputPath string `koanf:"output_path"`
	// CSVAllColumns switches the CSV header to the union of all record
	// keys instead of the first record's keys.
	CSVAllColumns bool `koanf:"csv_all_columns"`

	// API
	BaseURL string        `koanf:"base_url"`
	PerPage int           `koanf:"per_page"`
	Timeout time.Duration `koanf:"timeout"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogPretty bool   `koanf:"log_pretty"`

	// NoPrompt disables the interactive token prompt (for scripts and CI).
	NoPrompt bool `koanf:"no_prompt"`
}

// Configuration validation errors.
var (
	ErrMissingEnterprise = errors.New("enterprise name is required")
	ErrInvalidFormat     = errors.New("format must be csv or json")
	ErrInvalidPerPage    = errors.New("per_page must be between 1 and 100")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
)

// Default values.
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultFormat  = "csv"
	DefaultPerPage = 100
	DefaultTimeout = 30 * time.Second
	DefaultLevel   = "info"
)

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables take precedence over file values. A
// .env file in the working directory is loaded first when present.
func Load(configFilePath string) (*Config, error) {
	// Missing .env is fine; variables already in the environment win.
	_ = godotenv.Load()

	k := koanf.New(".")

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFilePath, err)
		}
	}

	perPage, err := getEnvIntOrDefault("GH_AUDIT_PER_PAGE", k, "per_page", DefaultPerPage)
	if err != nil {
		return nil, err
	}

	timeout, err := getEnvDurationOrDefault("GH_AUDIT_TIMEOUT", k, "timeout", DefaultTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Enterprise:    getEnvOrKoanf("GH_AUDIT_ENTERPRISE", k, "enterprise"),
		StartDate:     getEnvOrKoanf("GH_AUDIT_START_DATE", k, "start_date"),
		Action:        getEnvOrKoanf("GH_AUDIT_ACTION", k, "action"),
		Include:       getEnvOrKoanf("GH_AUDIT_INCLUDE", k, "include"),
		Format:        getEnvOrDefault("GH_AUDIT_FORMAT", k.String("format"), DefaultFormat),
		OutputPath:    getEnvOrKoanf("GH_AUDIT_OUTPUT", k, "output_path"),
		CSVAllColumns: getEnvBoolOrKoanf("GH_AUDIT_CSV_ALL_COLUMNS", k, "csv_all_columns"),
		BaseURL:       getEnvOrDefault("GH_AUDIT_BASE_URL", k.String("base_url"), DefaultBaseURL),
		PerPage:       perPage,
		Timeout:       timeout,
		LogLevel:      getEnvOrDefault("GH_AUDIT_LOG_LEVEL", k.String("log_level"), DefaultLevel),
		LogPretty:     getEnvBoolOrKoanf("GH_AUDIT_LOG_PRETTY", k, "log_pretty"),
		NoPrompt:      getEnvBoolOrKoanf("GH_AUDIT_NO_PROMPT", k, "no_prompt"),
	}

	return cfg, nil
}

// Validate checks the configuration after all layers (file, env, flags)
// have been applied.
func (c *Config) Validate() []error {
	var errs []error

	if c.Enterprise == "" {
		errs = append(errs, ErrMissingEnterprise)
	}
	if c.Format != "csv" && c.Format != "json" {
		errs = append(errs, ErrInvalidFormat)
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		errs = append(errs, ErrInvalidPerPage)
	}
	if c.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}

	return errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvBoolOrKoanf parses a boolean from the environment, falling back to
// the koanf value (false when absent).
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) bool {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err == nil {
			return parsed
		}
	}
	return k.Bool(koanfKey)
}

// getEnvIntOrDefault parses an integer from the environment, falling back
// to the koanf value, then the default.
func getEnvIntOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", envKey, err)
		}
		return parsed, nil
	}
	if k.Exists(koanfKey) {
		return k.Int(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvDurationOrDefault parses a duration ("45s", "2m") from the
// environment, falling back to the koanf value, then the default.
func getEnvDurationOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a duration: %w", envKey, err)
		}
		return parsed, nil
	}
	if k.Exists(koanfKey) {
		return k.Duration(koanfKey), nil
	}
	return defaultVal, nil
}
