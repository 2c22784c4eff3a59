// Package config loads runtime settings for the dashboard commands.
//
// Values start from Default, are overlaid by an optional YAML file, and are
// finally overlaid by DASHBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. DASHBOARD_SERVER_PORT
const EnvPrefix = "DASHBOARD"

// FileEnvVar names the environment variable holding an explicit config file path
const FileEnvVar = "DASHBOARD_CONFIG_FILE"

// DefaultCandidates are the data files the dashboard looks for, in order:
// stratified sample first, the full cleaned dataset last.
var DefaultCandidates = []string{
	"data/sample_us_oil_gas_stratified_10k.csv",
	"data/sample_us_oil_gas_10000.csv",
	"data/sample_us_oil_gas_24000.csv",
	"data/sample_us_oil_gas_1000.csv",
	"data/cleaned/us_oil_gas_cleaned.csv",
}

// Config holds all application settings
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Sampler SamplerConfig `yaml:"sampler" envconfig:"SAMPLER"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error fatal"`
}

// DataConfig locates the raw, cleaned, and sampled CSV files
type DataConfig struct {
	Candidates  []string `yaml:"candidates" envconfig:"CANDIDATES" validate:"min=1,dive,required"`
	RawPath     string   `yaml:"raw_path" envconfig:"RAW_PATH" validate:"required"`
	CleanedPath string   `yaml:"cleaned_path" envconfig:"CLEANED_PATH" validate:"required"`
}

// SamplerConfig configures the stratified sampler
type SamplerConfig struct {
	SourcePath string `yaml:"source_path" envconfig:"SOURCE_PATH" validate:"required"`
	OutputPath string `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required,nefield=SourcePath"`
	TargetRows int    `yaml:"target_rows" envconfig:"TARGET_ROWS" validate:"gt=0"`
	Seed       int64  `yaml:"seed" envconfig:"SEED"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Data: DataConfig{
			Candidates:  append([]string(nil), DefaultCandidates...),
			RawPath:     "data/raw",
			CleanedPath: "data/cleaned/us_oil_gas_cleaned.csv",
		},
		Sampler: SamplerConfig{
			SourcePath: "data/cleaned/us_oil_gas_cleaned.csv",
			OutputPath: DefaultCandidates[0],
			TargetRows: 240000,
			Seed:       42,
		},
	}
}

// LoadConfig builds the configuration from defaults, the config file, and
// the environment. It does not validate; call Validate on the result.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the keys present in a YAML file
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// configFilePath returns the explicit config file, or the first
// conventional location that exists
func configFilePath() string {
	if path := os.Getenv(FileEnvVar); path != "" {
		return path
	}

	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

var validate = validator.New()

// Validate checks every section's constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
