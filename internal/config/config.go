package config

import (
	"os"
	"strconv"
	"time"

	"scorenorm/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Detection DetectionConfig
	Batch     BatchConfig
	Poll      PollConfig
	Export    ExportConfig
	Paths     PathConfig
}

// DetectionConfig tunes header row detection
type DetectionConfig struct {
	MaxScanRows int // candidate rows inspected from the top of the grid
	MinScore    int // minimum score for a confident header match
	FallbackRow int // header row assumed when no candidate clears MinScore
}

// BatchConfig holds multi-file processing settings
type BatchConfig struct {
	Concurrency int64
}

// PollConfig holds settings for waiting on files still being written
type PollConfig struct {
	Initial    time.Duration
	MaxRetries uint64
	Budget     time.Duration
}

// ExportConfig holds output rendering settings
type ExportConfig struct {
	Format string
	OutDir string
}

// PathConfig holds file system paths
type PathConfig struct {
	InputFile     string
	OverridesFile string
	Sheet         string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Detection: DetectionConfig{
			MaxScanRows: getEnvIntOrDefault("SCAN_ROWS", 30),
			MinScore:    getEnvIntOrDefault("MIN_HEADER_SCORE", 5),
			FallbackRow: getEnvIntOrDefault("FALLBACK_HEADER_ROW", 0),
		},
		Batch: BatchConfig{
			Concurrency: int64(getEnvIntOrDefault("BATCH_CONCURRENCY", 4)),
		},
		Poll: PollConfig{
			Initial:    getEnvDurationOrDefault("POLL_INITIAL", 100*time.Millisecond),
			MaxRetries: uint64(getEnvIntOrDefault("POLL_MAX_RETRIES", 6)),
			Budget:     getEnvDurationOrDefault("POLL_BUDGET", 30*time.Second),
		},
		Export: ExportConfig{
			Format: getEnvOrDefault("EXPORT_FORMAT", "csv"),
			OutDir: getEnvOrDefault("EXPORT_DIR", "."),
		},
		Paths: PathConfig{
			InputFile:     getEnvOrDefault("INPUT_FILE", ""),
			OverridesFile: getEnvOrDefault("OVERRIDES_FILE", ""),
			Sheet:         getEnvOrDefault("INPUT_SHEET", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Detection.MaxScanRows < 1 {
		return errors.ConfigInvalid("SCAN_ROWS must be at least 1")
	}
	if config.Detection.MinScore < 1 {
		return errors.ConfigInvalid("MIN_HEADER_SCORE must be at least 1")
	}
	if config.Detection.FallbackRow < 0 {
		return errors.ConfigInvalid("FALLBACK_HEADER_ROW cannot be negative")
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	if config.Poll.Budget <= 0 {
		return errors.ConfigInvalid("POLL_BUDGET must be positive")
	}
	switch config.Export.Format {
	case "csv", "json", "xlsx":
	default:
		return errors.ConfigInvalid("EXPORT_FORMAT must be one of csv, json, xlsx")
	}
	return nil
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
