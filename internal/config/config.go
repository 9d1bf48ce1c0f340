package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/tally/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
	// About is markdown shown in the dashboard's about panel.
	About string `yaml:"about"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
}

// DataConfig holds the default dataset and schema
type DataConfig struct {
	Source       string        `yaml:"source"` // file path or http(s) URL
	SchemaFile   string        `yaml:"schemaFile"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// EngineConfig holds aggregation defaults
type EngineConfig struct {
	KeywordLimit int `yaml:"keywordLimit"`
	TopN         int `yaml:"topN"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Data: DataConfig{
			FetchTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			KeywordLimit: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in increasing precedence: defaults, the YAML file
// named by TALLY_CONFIG, then environment variables (a .env file in the
// working directory is loaded first if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("TALLY_CONFIG"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func applyEnv(config *Config) {
	config.Server.Addr = getEnvOrDefault("TALLY_ADDR", config.Server.Addr)
	if origins := os.Getenv("TALLY_CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}
	config.Server.ReadTimeout = getEnvDurationOrDefault("TALLY_READ_TIMEOUT", config.Server.ReadTimeout)
	config.Server.ShutdownTimeout = getEnvDurationOrDefault("TALLY_SHUTDOWN_TIMEOUT", config.Server.ShutdownTimeout)
	config.Server.MaxUploadBytes = int64(getEnvIntOrDefault("TALLY_MAX_UPLOAD_BYTES", int(config.Server.MaxUploadBytes)))

	config.Data.Source = getEnvOrDefault("TALLY_DATA_SOURCE", config.Data.Source)
	config.Data.SchemaFile = getEnvOrDefault("TALLY_SCHEMA", config.Data.SchemaFile)
	config.Data.FetchTimeout = getEnvDurationOrDefault("TALLY_FETCH_TIMEOUT", config.Data.FetchTimeout)

	config.Engine.KeywordLimit = getEnvIntOrDefault("TALLY_KEYWORD_LIMIT", config.Engine.KeywordLimit)
	config.Engine.TopN = getEnvIntOrDefault("TALLY_TOP_N", config.Engine.TopN)

	config.Log.Level = getEnvOrDefault("TALLY_LOG_LEVEL", config.Log.Level)
	config.Log.Development = getEnvBoolOrDefault("TALLY_LOG_DEV", config.Log.Development)

	config.About = getEnvOrDefault("TALLY_ABOUT", config.About)
}

func validateConfig(config *Config) error {
	if config.Server.Addr == "" {
		return errors.ConfigInvalid("server address is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if config.Engine.KeywordLimit < 0 {
		return errors.ConfigInvalid("keyword limit must not be negative")
	}
	if config.Engine.TopN < 0 {
		return errors.ConfigInvalid("top-N must not be negative")
	}
	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("unknown log level " + strconv.Quote(config.Log.Level))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
