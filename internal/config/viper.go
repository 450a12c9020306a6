// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/invoice-extract/internal/logging"
)

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TemplatesConfig locates the template definitions.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ExtractionConfig controls PDF text extraction.
type ExtractionConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"`
	PdftotextPath  string `mapstructure:"pdftotext_path" yaml:"pdftotext_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Workers        int    `mapstructure:"workers" yaml:"workers"`
}

// Timeout returns the per-document timeout, zero meaning none.
func (e ExtractionConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// MatchingConfig controls keyword matching and the acceptance threshold.
type MatchingConfig struct {
	CaseSensitive bool `mapstructure:"case_sensitive" yaml:"case_sensitive"`
	FoldAccents   bool `mapstructure:"fold_accents" yaml:"fold_accents"`
	MinFields     int  `mapstructure:"min_fields" yaml:"min_fields"`
}

// ExportConfig controls the spreadsheet output.
type ExportConfig struct {
	Format          string `mapstructure:"format" yaml:"format"`
	FileName        string `mapstructure:"file_name" yaml:"file_name"`
	SheetName       string `mapstructure:"sheet_name" yaml:"sheet_name"`
	AbsentMarker    string `mapstructure:"absent_marker" yaml:"absent_marker"`
	HeaderLocale    string `mapstructure:"header_locale" yaml:"header_locale"`
	Delimiter       string `mapstructure:"delimiter" yaml:"delimiter"`
	DefaultCurrency string `mapstructure:"default_currency" yaml:"default_currency"`
}

// ServerConfig controls the HTTP upload surface.
type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// SessionTTLMinutes drops upload sessions idle for longer; 0 keeps them.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
}

// SessionTTL returns the idle lifetime of an upload session.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMinutes) * time.Minute
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Templates  TemplatesConfig  `mapstructure:"templates" yaml:"templates"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Matching   MatchingConfig   `mapstructure:"matching" yaml:"matching"`
	Export     ExportConfig     `mapstructure:"export" yaml:"export"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
}

// InitializeConfig loads defaults, then config.yaml from the usual locations,
// then INVOICE_* environment variables.
func InitializeConfig() (*Config, error) {
	return load("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file.
func InitializeConfigFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.invoice-extract")
		v.AddConfigPath(".invoice-extract")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INVOICE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
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

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("templates.dir", "templates")

	v.SetDefault("extraction.backend", "native")
	v.SetDefault("extraction.pdftotext_path", "pdftotext")
	v.SetDefault("extraction.timeout_seconds", 60)
	v.SetDefault("extraction.workers", 1)

	v.SetDefault("matching.case_sensitive", false)
	v.SetDefault("matching.fold_accents", false)
	v.SetDefault("matching.min_fields", 1)

	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.file_name", "aggregated_invoices.xlsx")
	v.SetDefault("export.sheet_name", "Invoices")
	v.SetDefault("export.absent_marker", "N/A")
	v.SetDefault("export.header_locale", "en")
	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.default_currency", "EUR")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.session_ttl_minutes", 120)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Templates.Dir == "" {
		return fmt.Errorf("templates.dir must not be empty")
	}

	switch config.Extraction.Backend {
	case "native", "pdftotext":
	default:
		return fmt.Errorf("invalid extraction backend: %s (must be 'native' or 'pdftotext')", config.Extraction.Backend)
	}

	if config.Extraction.TimeoutSeconds < 0 || config.Extraction.TimeoutSeconds > 3600 {
		return fmt.Errorf("extraction.timeout_seconds must be between 0 and 3600, got: %d", config.Extraction.TimeoutSeconds)
	}

	if config.Extraction.Workers < 1 || config.Extraction.Workers > 64 {
		return fmt.Errorf("extraction.workers must be between 1 and 64, got: %d", config.Extraction.Workers)
	}

	if config.Matching.MinFields < 0 {
		return fmt.Errorf("matching.min_fields must not be negative, got: %d", config.Matching.MinFields)
	}

	if config.Export.Format != "xlsx" && config.Export.Format != "csv" {
		return fmt.Errorf("invalid export format: %s (must be 'xlsx' or 'csv')", config.Export.Format)
	}

	if config.Export.HeaderLocale != "en" && config.Export.HeaderLocale != "fr" {
		return fmt.Errorf("invalid export header locale: %s (must be 'en' or 'fr')", config.Export.HeaderLocale)
	}

	if len(config.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	if config.Export.FileName == "" {
		return fmt.Errorf("export.file_name must not be empty")
	}

	if len(config.Export.SheetName) == 0 || len(config.Export.SheetName) > 31 {
		return fmt.Errorf("export.sheet_name must be 1 to 31 characters, got: %q", config.Export.SheetName)
	}

	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got: %d", config.Server.MaxUploadMB)
	}

	if config.Server.SessionTTLMinutes < 0 {
		return fmt.Errorf("server.session_ttl_minutes must not be negative, got: %d", config.Server.SessionTTLMinutes)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from config.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}
