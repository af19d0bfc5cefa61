// Package config loads the typed configuration value object for the
// tracking reconciliation job. It is built once in main and passed
// down by parameter; no other component reads environment state.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all job configuration
type Config struct {
	Odoo        OdooConfig
	Mainfreight MainfreightConfig
	Job         JobConfig
	Log         LogConfig
	RunLog      RunLogConfig
	Sheets      SheetsConfig
}

// OdooConfig holds the ERP endpoint and credentials
type OdooConfig struct {
	URL      string `validate:"required,url"`
	Database string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
}

// MainfreightConfig holds the tracking provider endpoint settings
type MainfreightConfig struct {
	BaseURL string        `validate:"required,url"`
	APIKey  string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
}

// JobConfig holds the per-run job limits and scope
type JobConfig struct {
	MaxPickings int `validate:"gt=0"`
	CompanyIDs  []int64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RunLogConfig holds the durable run-log store settings
type RunLogConfig struct {
	Path string `validate:"required"`
}

// SheetsConfig holds the optional spreadsheet sink settings
type SheetsConfig struct {
	Enabled         bool
	CredentialsFile string
	SpreadsheetID   string
	Tab             string
	BatchSize       int
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with TRACKING_ prefix (e.g. TRACKING_ODOO_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tracking-sync")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TRACKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Odoo: OdooConfig{
			URL:      v.GetString("odoo.url"),
			Database: v.GetString("odoo.database"),
			User:     v.GetString("odoo.user"),
			Password: v.GetString("odoo.password"),
		},
		Mainfreight: MainfreightConfig{
			BaseURL: v.GetString("mainfreight.base_url"),
			APIKey:  v.GetString("mainfreight.api_key"),
			Timeout: v.GetDuration("mainfreight.timeout"),
		},
		Job: JobConfig{
			MaxPickings: v.GetInt("job.max_pickings"),
			CompanyIDs:  toInt64s(v.GetIntSlice("job.company_ids")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		RunLog: RunLogConfig{
			Path: v.GetString("runlog.path"),
		},
		Sheets: SheetsConfig{
			Enabled:         v.GetBool("sheets.enabled"),
			CredentialsFile: v.GetString("sheets.credentials_file"),
			SpreadsheetID:   v.GetString("sheets.spreadsheet_id"),
			Tab:             v.GetString("sheets.tab"),
			BatchSize:       v.GetInt("sheets.batch_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.Mainfreight.BaseURL == "" {
		cfg.Mainfreight.BaseURL = "https://api.mainfreight.com/Tracking/1.1/References"
	}
	if cfg.Mainfreight.Timeout == 0 {
		cfg.Mainfreight.Timeout = 30 * time.Second
	}
	if cfg.Job.MaxPickings == 0 {
		cfg.Job.MaxPickings = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.RunLog.Path == "" {
		cfg.RunLog.Path = "tpl_tracking.db"
	}
	if cfg.Sheets.Tab == "" {
		cfg.Sheets.Tab = "runs"
	}
	if cfg.Sheets.BatchSize == 0 {
		cfg.Sheets.BatchSize = 20
	}
}

// validate checks the assembled configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Sheets.Enabled {
		if c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("config validation failed: sheets.credentials_file is required when the sheets sink is enabled")
		}
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("config validation failed: sheets.spreadsheet_id is required when the sheets sink is enabled")
		}
	}
	return nil
}

func toInt64s(in []int) []int64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
