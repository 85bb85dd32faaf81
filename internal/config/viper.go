// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/extractor"
	"fjacquet/camt-xlsx/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Profile struct {
		Name string `mapstructure:"name" yaml:"name"`
		File string `mapstructure:"file" yaml:"file"`
		// Overrides of the selected profile; nil keeps the profile's value.
		DefaultCurrency *string `mapstructure:"default_currency" yaml:"default_currency,omitempty"`
		NotAvailable    *string `mapstructure:"not_available" yaml:"not_available,omitempty"`
	} `mapstructure:"profile" yaml:"profile"`

	Output struct {
		Format       string `mapstructure:"format" yaml:"format"`
		SheetName    string `mapstructure:"sheet_name" yaml:"sheet_name"`
		FileName     string `mapstructure:"file_name" yaml:"file_name"`
		CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	} `mapstructure:"output" yaml:"output"`

	Extraction struct {
		FieldErrorPolicy string `mapstructure:"field_error_policy" yaml:"field_error_policy"`
		Workers          int    `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Server struct {
		Address        string        `mapstructure:"address" yaml:"address"`
		MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
		DownloadTTL    time.Duration `mapstructure:"download_ttl" yaml:"download_ttl"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config.yaml, then CAMT_* environment variables.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file.
// An empty path searches the default locations.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.camt-xlsx")
		v.AddConfigPath(".camt-xlsx")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("CAMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Override keys have no default, so they must be bound to be unmarshalled
	for _, key := range []string{"profile.default_currency", "profile.not_available"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// 4. Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Profile defaults
	v.SetDefault("profile.name", "camt054")
	v.SetDefault("profile.file", "")

	// Output defaults
	v.SetDefault("output.format", export.FormatXLSX)
	v.SetDefault("output.sheet_name", export.DefaultSheetName)
	v.SetDefault("output.file_name", export.DefaultFileName)
	v.SetDefault("output.csv_delimiter", ",")

	// Extraction defaults
	v.SetDefault("extraction.field_error_policy", string(extractor.PolicyNullField))
	v.SetDefault("extraction.workers", 0)

	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.download_ttl", "15m")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Profile.Name) == "" {
		return fmt.Errorf("profile.name must not be empty")
	}

	switch strings.ToLower(config.Output.Format) {
	case export.FormatXLSX, export.FormatCSV:
	default:
		return fmt.Errorf("invalid output format: %s (must be 'xlsx' or 'csv')", config.Output.Format)
	}

	// Validate CSV delimiter
	if utf8.RuneCountInString(config.Output.CSVDelimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Output.CSVDelimiter)
	}

	if _, err := extractor.ParsePolicy(config.Extraction.FieldErrorPolicy); err != nil {
		return err
	}

	if config.Extraction.Workers < 0 || config.Extraction.Workers > 256 {
		return fmt.Errorf("extraction.workers must be between 0 and 256, got: %d", config.Extraction.Workers)
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got: %d", config.Server.MaxUploadBytes)
	}
	if config.Server.DownloadTTL <= 0 {
		return fmt.Errorf("server.download_ttl must be positive, got: %s", config.Server.DownloadTTL)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Output.CSVDelimiter)
	return r
}

// Policy returns the parsed field error policy.
func (c *Config) Policy() extractor.FieldErrorPolicy {
	p, err := extractor.ParsePolicy(c.Extraction.FieldErrorPolicy)
	if err != nil {
		return extractor.PolicyNullField
	}
	return p
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
