// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var loadEnvOnce sync.Once

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		Retries        int    `mapstructure:"retries" yaml:"retries"`
		BackoffMillis  int    `mapstructure:"backoff_millis" yaml:"backoff_millis"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Import struct {
		AcceptanceThreshold float64 `mapstructure:"acceptance_threshold" yaml:"acceptance_threshold"`
		Workers             int     `mapstructure:"workers" yaml:"workers"`
		AutoLearn           bool    `mapstructure:"auto_learn" yaml:"auto_learn"`
		HeaderRow           int     `mapstructure:"header_row" yaml:"header_row"`
	} `mapstructure:"import" yaml:"import"`

	Data struct {
		DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
		SynonymsPath string `mapstructure:"synonyms_path" yaml:"synonyms_path"`
		VendorsPath  string `mapstructure:"vendors_path" yaml:"vendors_path"`
		TenantID     string `mapstructure:"tenant_id" yaml:"tenant_id"`
	} `mapstructure:"data" yaml:"data"`
}

// LoadEnv loads environment variables from a .env file if one exists.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				return
			}
		}
		_ = godotenv.Load(envFile)
	})
}

// InitializeConfig loads configuration hierarchically: defaults, then an
// optional config file, then FLIPTRACK_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.fliptrack")
	v.AddConfigPath(".fliptrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLIPTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// The API key is always taken from the conventional unprefixed variable.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.retries", 2)
	v.SetDefault("ai.backoff_millis", 500)
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("import.acceptance_threshold", 0.35)
	v.SetDefault("import.workers", 1)
	v.SetDefault("import.auto_learn", true)
	v.SetDefault("import.header_row", 0)

	v.SetDefault("data.database_path", "fliptrack.db")
	v.SetDefault("data.synonyms_path", "")
	v.SetDefault("data.vendors_path", "vendors.yaml")
	v.SetDefault("data.tenant_id", "default")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.Retries < 0 || config.AI.Retries > 10 {
			return fmt.Errorf("ai.retries must be between 0 and 10, got: %d", config.AI.Retries)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Import.AcceptanceThreshold < 0.0 || config.Import.AcceptanceThreshold > 1.0 {
		return fmt.Errorf("import.acceptance_threshold must be between 0.0 and 1.0, got: %f", config.Import.AcceptanceThreshold)
	}

	if config.Import.Workers < 0 {
		return fmt.Errorf("import.workers must be non-negative, got: %d", config.Import.Workers)
	}

	return nil
}
