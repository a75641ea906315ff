package config

import (
	"os"
	"strconv"
	"strings"

	"mlproject/domain/artifacts"
	"mlproject/internal/errors"
)

// Defaults for a pipeline run.
const (
	DefaultSource       = "notebook/data/stud.csv"
	DefaultArtifactDir  = "artifacts"
	DefaultTestFraction = 0.2
	DefaultSeed         = int64(42)
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config represents the complete pipeline configuration. It is built once per run
// and handed by value to each stage.
type Config struct {
	Source    SourceConfig
	Artifacts artifacts.Paths
	Split     SplitConfig
	Log       LogConfig
}

// SourceConfig locates the raw dataset
type SourceConfig struct {
	Path string
}

// SplitConfig controls the holdout split. StratifyBy is empty for a plain random split.
type SplitConfig struct {
	TestFraction float64
	Seed         int64
	StratifyBy   string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the fixed configuration of the student-performance pipeline.
func Default() Config {
	return Config{
		Source:    SourceConfig{Path: DefaultSource},
		Artifacts: artifacts.NewPaths(DefaultArtifactDir),
		Split: SplitConfig{
			TestFraction: DefaultTestFraction,
			Seed:         DefaultSeed,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	cfg := Default()

	cfg.Source.Path = getEnvOrDefault("PIPELINE_SOURCE", DefaultSource)
	cfg.Artifacts = artifacts.NewPaths(getEnvOrDefault("PIPELINE_ARTIFACT_DIR", DefaultArtifactDir))

	fraction, err := getEnvFloat("PIPELINE_TEST_FRACTION", DefaultTestFraction)
	if err != nil {
		return Config{}, err
	}
	cfg.Split.TestFraction = fraction

	seed, err := getEnvInt64("PIPELINE_SEED", DefaultSeed)
	if err != nil {
		return Config{}, err
	}
	cfg.Split.Seed = seed
	cfg.Split.StratifyBy = strings.TrimSpace(os.Getenv("PIPELINE_STRATIFY_BY"))

	cfg.Log.Level = getEnvOrDefault("PIPELINE_LOG_LEVEL", DefaultLogLevel)
	cfg.Log.Format = getEnvOrDefault("PIPELINE_LOG_FORMAT", DefaultLogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks the configuration for values no stage can work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.Path) == "" {
		return errors.ConfigInvalid("source path is required")
	}
	if strings.TrimSpace(c.Artifacts.Dir) == "" {
		return errors.ConfigInvalid("artifact directory is required")
	}
	if c.Split.TestFraction <= 0 || c.Split.TestFraction >= 1 {
		return errors.ConfigInvalid("test fraction must be in (0, 1), got " +
			strconv.FormatFloat(c.Split.TestFraction, 'g', -1, 64))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.ConfigInvalid("log format must be text or json, got " + c.Log.Format)
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

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + value)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number, got " + value)
	}
	return parsed, nil
}
