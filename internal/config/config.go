package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"statbook/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" validate:"required"`
	Log        LogConfig        `yaml:"log" validate:"required"`
	Stats      StatsConfig      `yaml:"stats" validate:"required"`
	Data       DataConfig       `yaml:"data"`
	Charts     ChartConfig      `yaml:"charts" validate:"required"`
	Simulation SimulationConfig `yaml:"simulation" validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port" validate:"required,numeric"`
	GinMode string `yaml:"gin_mode" validate:"oneof=debug release test"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// StatsConfig holds defaults used when a request omits them
type StatsConfig struct {
	DefaultConfidence float64 `yaml:"default_confidence" validate:"gt=0,lt=1"`
	DefaultAlpha      float64 `yaml:"default_alpha" validate:"gt=0,lt=1"`
}

// DataConfig holds synthetic data settings
type DataConfig struct {
	Seed          int64 `yaml:"seed"`
	MaxSampleSize int   `yaml:"max_sample_size" validate:"min=2"` // Upper bound on generated or simulated sample sizes
}

// Chart dimensions accepted from configuration and from requests
const (
	MinChartSize = 100
	MaxChartSize = 4000
)

// ChartConfig holds default SVG dimensions
type ChartConfig struct {
	Width  int `yaml:"width" validate:"min=100,max=4000"`
	Height int `yaml:"height" validate:"min=100,max=4000"`
}

// SimulationConfig holds coverage simulation settings
type SimulationConfig struct {
	Workers   int `yaml:"workers" validate:"min=1,max=64"`
	BatchSize int `yaml:"batch_size" validate:"min=1"`
	MaxTrials int `yaml:"max_trials" validate:"min=1"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Port: "8080", GinMode: "debug"},
		Log:        LogConfig{Level: "info", Format: "text"},
		Stats:      StatsConfig{DefaultConfidence: 0.95, DefaultAlpha: 0.05},
		Data:       DataConfig{Seed: 42, MaxSampleSize: 100_000},
		Charts:     ChartConfig{Width: 720, Height: 400},
		Simulation: SimulationConfig{Workers: 4, BatchSize: 250, MaxTrials: 100_000},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// STATBOOK_CONFIG, then environment variables, and validates the result
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("STATBOOK_CONFIG"); path != "" {
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
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid("cannot read " + path + ": " + err.Error())
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return errors.ConfigInvalid("invalid YAML in " + path + ": " + err.Error())
	}
	return nil
}

func applyEnv(config *Config) {
	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
	config.Log.Format = getEnvOrDefault("LOG_FORMAT", config.Log.Format)
	config.Stats.DefaultConfidence = getEnvFloatOrDefault("DEFAULT_CONFIDENCE", config.Stats.DefaultConfidence)
	config.Stats.DefaultAlpha = getEnvFloatOrDefault("DEFAULT_ALPHA", config.Stats.DefaultAlpha)
	config.Data.Seed = getEnvInt64OrDefault("DATA_SEED", config.Data.Seed)
	config.Data.MaxSampleSize = getEnvIntOrDefault("MAX_SAMPLE_SIZE", config.Data.MaxSampleSize)
	config.Charts.Width = getEnvIntOrDefault("CHART_WIDTH", config.Charts.Width)
	config.Charts.Height = getEnvIntOrDefault("CHART_HEIGHT", config.Charts.Height)
	config.Simulation.Workers = getEnvIntOrDefault("SIM_WORKERS", config.Simulation.Workers)
	config.Simulation.BatchSize = getEnvIntOrDefault("SIM_BATCH_SIZE", config.Simulation.BatchSize)
	config.Simulation.MaxTrials = getEnvIntOrDefault("SIM_MAX_TRIALS", config.Simulation.MaxTrials)
}

var validate = validator.New()

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.ConfigInvalid(err.Error())
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
