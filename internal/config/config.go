// Package config loads the server configuration from a YAML file, an optional
// .env file and PLANUNSCH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PLANUNSCH_"

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server        ServerConfig        `yaml:"server" envPrefix:"SERVER_"`
	Storage       StorageConfig       `yaml:"storage" envPrefix:"STORAGE_"`
	Processing    ProcessingConfig    `yaml:"processing" envPrefix:"PROCESSING_"`
	Inference     InferenceConfig     `yaml:"inference" envPrefix:"INFERENCE_"`
	Notifications NotificationsConfig `yaml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Advanced      AdvancedConfig      `yaml:"advanced" envPrefix:"ADVANCED_"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port" env:"PORT"`
	BindAddress  string `yaml:"bindAddress" env:"BIND_ADDRESS"`
	EnableCORS   bool   `yaml:"enableCors" env:"ENABLE_CORS"`
	AllowOrigins string `yaml:"allowOrigins" env:"ALLOW_ORIGINS"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds" env:"READ_TIMEOUT_SECONDS"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds" env:"WRITE_TIMEOUT_SECONDS"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds" env:"IDLE_TIMEOUT_SECONDS"`
	BodyLimit    string `yaml:"bodyLimit" env:"BODY_LIMIT"`
	// StaticDirectory holds a built frontend to serve at /. Empty disables it.
	StaticDirectory string `yaml:"staticDirectory" env:"STATIC_DIRECTORY"`
}

// StorageConfig selects the record backend
type StorageConfig struct {
	Backend       string `yaml:"backend" env:"BACKEND"`
	DataDirectory string `yaml:"dataDirectory" env:"DATA_DIRECTORY"`
}

// ProcessingConfig contains ingestion settings
type ProcessingConfig struct {
	MinTextLength          int `yaml:"minTextLength" env:"MIN_TEXT_LENGTH"`
	MaxConcurrent          int `yaml:"maxConcurrentIngestions" env:"MAX_CONCURRENT_INGESTIONS"`
	JobRetentionMinutes    int `yaml:"jobRetentionMinutes" env:"JOB_RETENTION_MINUTES"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes" env:"CLEANUP_INTERVAL_MINUTES"`
}

// InferenceConfig selects the event inference backend
type InferenceConfig struct {
	Backend        string `yaml:"backend" env:"BACKEND"`
	APIKey         string `yaml:"apiKey" env:"API_KEY"`
	Model          string `yaml:"model" env:"MODEL"`
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" env:"TIMEOUT_SECONDS"`
}

// NotificationsConfig sizes the in-memory notification history
type NotificationsConfig struct {
	HistorySize int `yaml:"historySize" env:"HISTORY_SIZE"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `yaml:"logLevel" env:"LOG_LEVEL"`
	EnableRequestLogging bool   `yaml:"enableRequestLogging" env:"ENABLE_REQUEST_LOGGING"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "20M",
		},
		Storage: StorageConfig{
			Backend:       "file",
			DataDirectory: "./data",
		},
		Processing: ProcessingConfig{
			MinTextLength:          100,
			MaxConcurrent:          0,
			JobRetentionMinutes:    60,
			CleanupIntervalMinutes: 5,
		},
		Inference: InferenceConfig{
			Backend:        "gemini",
			Model:          "gemini-2.5-flash",
			Endpoint:       "https://generativelanguage.googleapis.com/",
			TimeoutSeconds: 120,
		},
		Notifications: NotificationsConfig{
			HistorySize: 100,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig reads configPath, writing the defaults there on first run, then
// applies envPath (if present) and environment overrides, and validates.
func LoadConfig(configPath, envPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envPath != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration as YAML
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# PlanUNSCH server configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides lets PLANUNSCH_* variables override file values.
// PORT and API_KEY/GEMINI_API_KEY are honoured as fallbacks.
func (c *AppConfig) applyEnvironmentOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if _, ok := os.LookupEnv(EnvPrefix + "SERVER_PORT"); !ok {
		if port := os.Getenv("PORT"); port != "" {
			var p int
			if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
				c.Server.Port = p
			}
		}
	}
	if c.Inference.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
			if key := os.Getenv(name); key != "" {
				c.Inference.APIKey = key
				break
			}
		}
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Server.StaticDirectory != "" && !filepath.IsAbs(c.Server.StaticDirectory) {
		c.Server.StaticDirectory = filepath.Join(configDir, c.Server.StaticDirectory)
	}
}

// Validate checks value ranges and enumerations.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	switch c.Storage.Backend {
	case "file", "duckdb":
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be file or duckdb, got %q", c.Storage.Backend))
	}
	switch strings.ToLower(c.Inference.Backend) {
	case "gemini", "heuristic":
	default:
		errs = append(errs, fmt.Errorf("inference.backend must be gemini or heuristic, got %q", c.Inference.Backend))
	}
	if c.Processing.MinTextLength < 0 {
		errs = append(errs, fmt.Errorf("processing.minTextLength must not be negative"))
	}
	if c.Processing.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("processing.maxConcurrentIngestions must not be negative"))
	}
	if c.Processing.CleanupIntervalMinutes < 1 {
		errs = append(errs, fmt.Errorf("processing.cleanupIntervalMinutes must be at least 1"))
	}
	if c.Notifications.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("notifications.historySize must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AllowedOrigins splits the comma-separated origin list, defaulting to "*".
func (c *AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
