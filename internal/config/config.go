package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"qastats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Logging  LoggingConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web UI server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// APIConfig holds JSON API server settings
type APIConfig struct {
	Port string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// DataConfig holds upload and spreadsheet settings
type DataConfig struct {
	MaxUploadMB int
	WorkbookTTL time.Duration
	MaxRows     int
}

// AnalysisConfig holds comparison defaults
type AnalysisConfig struct {
	SweepWorkers      int
	DefaultConfidence float64 // Percent, e.g. 95
}

// MaxUploadBytes returns the upload limit in bytes
func (d DataConfig) MaxUploadBytes() int64 {
	return int64(d.MaxUploadMB) << 20
}

// Load reads configuration from environment variables (and the optional file
// named by QASTATS_CONFIG) and validates it
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("QASTATS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
		API: APIConfig{
			Port: v.GetString("API_PORT"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Data: DataConfig{
			MaxUploadMB: v.GetInt("MAX_UPLOAD_MB"),
			WorkbookTTL: v.GetDuration("WORKBOOK_TTL"),
			MaxRows:     v.GetInt("MAX_ROWS"),
		},
		Analysis: AnalysisConfig{
			SweepWorkers:      v.GetInt("SWEEP_WORKERS"),
			DefaultConfidence: v.GetFloat64("DEFAULT_CONFIDENCE"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("API_PORT", "8081")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("WORKBOOK_TTL", "30m")
	v.SetDefault("MAX_ROWS", 0)
	v.SetDefault("SWEEP_WORKERS", 4)
	v.SetDefault("DEFAULT_CONFIDENCE", 95.0)
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Data.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be at least 1")
	}
	if config.Data.WorkbookTTL <= 0 {
		return errors.ConfigInvalid("WORKBOOK_TTL must be positive")
	}
	if config.Data.MaxRows < 0 {
		return errors.ConfigInvalid("MAX_ROWS cannot be negative")
	}
	if config.Analysis.SweepWorkers < 1 {
		return errors.ConfigInvalid("SWEEP_WORKERS must be at least 1")
	}
	if c := config.Analysis.DefaultConfidence; c <= 0 || c >= 100 {
		return errors.ConfigInvalid("DEFAULT_CONFIDENCE must lie strictly between 0 and 100")
	}
	return nil
}
