// Package config provides configuration for the EventDeck client and tools, sourced from command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	API     APIConfig
	Session SessionConfig
	Mirror  MirrorConfig
	MockAPI MockAPIConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// APIConfig describes how to reach the planning backend.
type APIConfig struct {
	BaseURL           string        // REST root (default: http://localhost:8080/api)
	ActuatorURL       string        // Health and metrics root (default: http://localhost:8080/actuator)
	Timeout           time.Duration // Per-request timeout (default: 15s)
	RequestsPerSecond float64       // Outbound rate per resource (default: 10)
	Burst             int           // Outbound burst per resource (default: 20)
}

// SessionConfig holds the bearer token used when no persisted session exists.
type SessionConfig struct {
	Token string
}

// MirrorConfig controls where the offline fallback mirror is persisted.
type MirrorConfig struct {
	Path     string
	InMemory bool
}

// MockAPIConfig configures the local fake backend.
type MockAPIConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TokenSecret  string
	TokenTTL     time.Duration
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args excludes the program name. Unknown flags are an error; positional
// arguments left after the flags are returned alongside the config.
func LoadConfig(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("eventdeck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	apiURL := fs.String("api-url", "", "Backend REST base URL")
	actuatorURL := fs.String("actuator-url", "", "Backend actuator base URL")
	apiTimeout := fs.String("api-timeout", "", "Per-request timeout (default: 15s)")
	apiRPS := fs.String("api-rps", "", "Outbound requests per second per resource (default: 10)")
	apiBurst := fs.String("api-burst", "", "Outbound burst per resource (default: 20)")
	token := fs.String("token", "", "Bearer token")
	mirrorPath := fs.String("mirror-path", "", "Directory of the offline mirror database")
	mirrorInMemory := fs.String("mirror-in-memory", "", "Keep the offline mirror in memory only")
	mockPort := fs.String("port", "", "Mock API port (default: 8080)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine; godotenv never overrides the real environment.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:           strings.TrimRight(getConfigValue(*apiURL, "API_BASE_URL", "http://localhost:8080/api"), "/"),
			ActuatorURL:       strings.TrimRight(getConfigValue(*actuatorURL, "API_ACTUATOR_URL", "http://localhost:8080/actuator"), "/"),
			RequestsPerSecond: getFloatConfigValue(*apiRPS, "API_RPS", 10),
			Burst:             getIntConfigValue(*apiBurst, "API_BURST", 20),
		},
		Session: SessionConfig{
			Token: getConfigValue(*token, "EVENTDECK_TOKEN", ""),
		},
		Mirror: MirrorConfig{
			Path:     getConfigValue(*mirrorPath, "MIRROR_PATH", ""),
			InMemory: getBoolConfigValue(*mirrorInMemory, "MIRROR_IN_MEMORY", false),
		},
		MockAPI: MockAPIConfig{
			Port:        getConfigValue(*mockPort, "MOCKAPI_PORT", "8080"),
			TokenSecret: getConfigValue("", "MOCKAPI_TOKEN_SECRET", "eventdeck-dev-secret"),
		},
	}

	var err error
	if cfg.API.Timeout, err = getDurationConfigValue(*apiTimeout, "API_TIMEOUT", "15s"); err != nil {
		return nil, nil, err
	}
	if cfg.MockAPI.ReadTimeout, err = getDurationConfigValue("", "MOCKAPI_READ_TIMEOUT", "15s"); err != nil {
		return nil, nil, err
	}
	if cfg.MockAPI.WriteTimeout, err = getDurationConfigValue("", "MOCKAPI_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, nil, err
	}
	if cfg.MockAPI.IdleTimeout, err = getDurationConfigValue("", "MOCKAPI_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, nil, err
	}
	if cfg.MockAPI.TokenTTL, err = getDurationConfigValue("", "MOCKAPI_TOKEN_TTL", "24h"); err != nil {
		return nil, nil, err
	}

	if err := cfg.expandMirrorPath(); err != nil {
		return nil, nil, fmt.Errorf("invalid mirror path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if err := validateURL("API base URL", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateURL("actuator URL", c.API.ActuatorURL); err != nil {
		return err
	}

	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("API_RPS must be positive, got %v", c.API.RequestsPerSecond)
	}
	if c.API.Burst < 1 {
		return fmt.Errorf("API_BURST must be at least 1, got %d", c.API.Burst)
	}

	if !c.Mirror.InMemory && c.Mirror.Path == "" {
		return errors.New("mirror path cannot be empty unless the mirror is in memory")
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", name, raw)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is used as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMirrorPath defaults the mirror to ~/.eventdeck/mirror.
func (c *Config) expandMirrorPath() error {
	if c.Mirror.InMemory {
		return nil
	}

	defaultPath := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		defaultPath = filepath.Join(homeDir, ".eventdeck", "mirror")
	}

	expanded, err := expandPath(c.Mirror.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Mirror.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}
