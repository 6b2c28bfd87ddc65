package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/period"
)

// FileName is the default configuration file name.
const FileName = "rn518.yaml"

// Data source drivers.
const (
	DriverPostgres = "postgres"
	DriverFiles    = "files"
)

// Config represents the top-level rn518.yaml configuration.
type Config struct {
	DataSource DataSourceConfig            `yaml:"datasource"`
	Processing ProcessingConfig            `yaml:"processing"`
	History    HistoryConfig               `yaml:"history"`
	Targets    map[model.Indicator]float64 `yaml:"targets,omitempty"`
	Logging    LoggingConfig               `yaml:"logging"`
	Server     ServerConfig                `yaml:"server"`
	RunLog     RunLogConfig                `yaml:"runlog"`
}

// DataSourceConfig selects where ledger entries come from.
type DataSourceConfig struct {
	Driver       string `yaml:"driver"`                  // "postgres" or "files"
	DSN          string `yaml:"dsn,omitempty"`           // postgres only
	Dir          string `yaml:"dir,omitempty"`           // files only
	LedgerFormat string `yaml:"ledger_format,omitempty"` // "canonical" or "ans"
	Encoding     string `yaml:"encoding,omitempty"`      // "latin1" or "utf8", ans only
}

// ProcessingConfig controls period fan-out.
type ProcessingConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// HistoryConfig lists the candidate periods of an operator history, most
// recent first. When Periods is empty, Depth quarters back from the latest
// known period are used.
type HistoryConfig struct {
	Periods []string `yaml:"periods,omitempty"`
	Depth   int      `yaml:"depth,omitempty"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	RefreshSchedule string `yaml:"refresh_schedule,omitempty"` // cron spec
}

// RunLogConfig controls where period runs are recorded.
type RunLogConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a rn518.yaml file from disk. Missing sections keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, returning Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	periods := indicators.DefaultHistoryPeriods()
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = period.Format(p)
	}
	return &Config{
		DataSource: DataSourceConfig{
			Driver:       DriverFiles,
			Dir:          "data",
			LedgerFormat: "canonical",
			Encoding:     "latin1",
		},
		Processing: ProcessingConfig{
			Concurrency: indicators.DefaultConcurrency,
		},
		History: HistoryConfig{
			Periods: labels,
		},
		Targets: consolidate.DefaultTargets(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		RunLog: RunLogConfig{
			Dir: "logs",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch c.DataSource.Driver {
	case DriverPostgres, DriverFiles:
	default:
		return fmt.Errorf("unknown datasource driver %q", c.DataSource.Driver)
	}
	if c.Processing.Concurrency < 0 {
		return fmt.Errorf("processing.concurrency must not be negative")
	}
	if _, err := c.HistoryPeriods(); err != nil {
		return err
	}
	for ind := range c.Targets {
		if _, err := model.ParseIndicator(string(ind)); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
	}
	return nil
}

// HistoryPeriods parses history.periods.
func (c *Config) HistoryPeriods() ([]model.Period, error) {
	periods, err := period.ParseAll(c.History.Periods)
	if err != nil {
		return nil, fmt.Errorf("history.periods: %w", err)
	}
	return periods, nil
}

// TargetValues returns the configured targets, or the defaults when none
// are set.
func (c *Config) TargetValues() consolidate.Targets {
	if len(c.Targets) == 0 {
		return consolidate.DefaultTargets()
	}
	return consolidate.Targets(c.Targets)
}

// ApplyEnv loads envFile (ignored if absent) into the process environment
// and applies overrides: DATABASE_URL, or DB_USER, DB_PASSWORD, DB_HOST,
// DB_PORT and DB_NAME together, replace the DSN and switch the driver to
// postgres; RN518_LOG_LEVEL replaces the log level.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if dsn := envDSN(); dsn != "" {
		c.DataSource.DSN = dsn
		c.DataSource.Driver = DriverPostgres
	}
	if lvl := os.Getenv("RN518_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	return nil
}

func envDSN() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user == "" || pass == "" || host == "" || port == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
