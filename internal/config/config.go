// Package config loads application configuration from environment variables
// (SALES_ prefix) with an optional YAML file underneath, and owns the report
// definitions: which CSV files make up each report, their table shape, and
// the business label sets (grouping buckets, aliases, excludable prefixes)
// that the pipeline treats as caller data rather than hardcoded rules.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Reports ReportsConfig `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains request rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ReportsConfig locates the report data and bounds the user controls.
type ReportsConfig struct {
	DataDir        string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DefinitionFile string `yaml:"definition_file" envconfig:"DEFINITION_FILE"`
	DefaultTopN    int    `yaml:"default_top_n" envconfig:"DEFAULT_TOP_N" validate:"min=1"`
	MaxTopN        int    `yaml:"max_top_n" envconfig:"MAX_TOP_N" validate:"min=1"`
}

// Default returns the baseline configuration. Defaults live here rather than
// in envconfig default tags so the layering stays defaults < file < env:
// envconfig writes default-tag values over anything a file already set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Reports: ReportsConfig{
			DataDir:     "data",
			DefaultTopN: 10,
			MaxTopN:     70,
		},
	}
}

// Load builds configuration from defaults, an optional YAML file named by
// SALES_CONFIG_FILE, and SALES_-prefixed environment variables, in that
// order of precedence (later wins).
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SALES_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("SALES", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks structural constraints plus the cross-field ones struct
// tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Reports.DefaultTopN > c.Reports.MaxTopN {
		return fmt.Errorf("default_top_n %d exceeds max_top_n %d", c.Reports.DefaultTopN, c.Reports.MaxTopN)
	}
	return nil
}
