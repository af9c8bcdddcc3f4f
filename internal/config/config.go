package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

// Supported archive drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Analysis analysis.Policy
}

// DatabaseConfig holds the report archive connection settings.
// An empty URL selects the in-memory archive.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	AllowedOrigins  []string
	MaxUploadMB     int
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// MaxUploadBytes returns the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		Logging:  *loadLoggingConfig(),
	}

	policy, err := loadAnalysisPolicy()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis policy")
	}
	config.Analysis = policy

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    getEnvOrDefault("DATABASE_URL", ""),
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverPostgres)),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", gin.DebugMode),
		AllowedOrigins:  splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxUploadMB:     getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// loadAnalysisPolicy starts from the default policy, overlays the optional
// YAML policy file and finally SCORE_WORKERS.
func loadAnalysisPolicy() (analysis.Policy, error) {
	policy := analysis.DefaultPolicy()
	if path := os.Getenv("ANALYSIS_POLICY_FILE"); path != "" {
		loaded, err := LoadPolicyFile(path)
		if err != nil {
			return policy, err
		}
		policy = loaded
	}
	policy.ScoreWorkers = getEnvIntOrDefault("SCORE_WORKERS", policy.ScoreWorkers)
	return policy, nil
}

// LoadPolicyFile reads a YAML policy; keys absent from the file keep their defaults.
func LoadPolicyFile(path string) (analysis.Policy, error) {
	policy := analysis.DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, errors.ConfigInvalid(fmt.Sprintf("cannot read policy file %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, errors.ConfigInvalid(fmt.Sprintf("invalid policy file %s: %v", path, err))
	}
	return policy, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	switch config.Server.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported GIN_MODE %q (use debug, release or test)", config.Server.GinMode))
	}
	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_DRIVER %q", config.Database.Driver))
	}
	return config.Analysis.Validate()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
