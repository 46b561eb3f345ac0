// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	score "github.com/donaldgifford/refurb-sku-matcher/pkg/scorer"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	Batch    BatchConfig    `yaml:"batch"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// MatchingConfig tunes the scorer and the resolver's acceptance policy.
// Omitted keys keep their production defaults.
type MatchingConfig struct {
	Tuning score.Tuning    `yaml:"tuning"`
	Policy resolver.Policy `yaml:"policy"`

	// Carriers adds spelling variants per canonical carrier token.
	Carriers map[string][]string `yaml:"carriers"`
}

// CarrierTable builds the carrier table from the built-ins plus Carriers.
func (m *MatchingConfig) CarrierTable() *normalize.CarrierTable {
	if len(m.Carriers) == 0 {
		return normalize.DefaultCarrierTable()
	}
	return normalize.NewCarrierTable(m.Carriers)
}

// BatchConfig defines bulk rematch settings.
type BatchConfig struct {
	Concurrency      int     `yaml:"concurrency"`
	QueriesPerSecond float64 `yaml:"queries_per_second"`
	Burst            int     `yaml:"burst"`
	BatchSize        int     `yaml:"batch_size"`
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	RematchInterval   time.Duration `yaml:"rematch_interval"`    // 0 disables the scheduler
	StaleJobThreshold time.Duration `yaml:"stale_job_threshold"` // default: 2h
}

// TracingConfig defines OpenTelemetry trace export.
type TracingConfig struct {
	Enabled     bool          `yaml:"enabled"`
	ServiceName string        `yaml:"service_name"`
	Endpoint    string        `yaml:"endpoint"`
	Insecure    bool          `yaml:"insecure"`
	SampleRatio float64       `yaml:"sample_ratio"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Tracing converts the section to the tracing package's config.
func (t *TracingConfig) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:     t.Enabled,
		ServiceName: t.ServiceName,
		Endpoint:    t.Endpoint,
		Insecure:    t.Insecure,
		SampleRatio: t.SampleRatio,
		Timeout:     t.Timeout,
	}
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	// Seed the matching section so partial overrides keep the defaults.
	cfg := &Config{
		Matching: MatchingConfig{
			Tuning: score.DefaultTuning(),
			Policy: resolver.DefaultPolicy(),
		},
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyBatchDefaults(&cfg.Batch)
	applyScheduleDefaults(&cfg.Schedule)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyBatchDefaults(b *BatchConfig) {
	if b.Concurrency == 0 {
		b.Concurrency = 8
	}
	if b.QueriesPerSecond == 0 {
		b.QueriesPerSecond = 50
	}
	if b.Burst == 0 {
		b.Burst = 10
	}
	if b.BatchSize == 0 {
		b.BatchSize = 500
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.StaleJobThreshold == 0 {
		s.StaleJobThreshold = 2 * time.Hour
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "sku-matcher"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
	if t.Timeout == 0 {
		t.Timeout = 10 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	errs = append(errs, validateMatching(&cfg.Matching)...)

	if cfg.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("batch.concurrency must be at least 1"))
	}
	if cfg.Batch.QueriesPerSecond < 0 {
		errs = append(errs, fmt.Errorf("batch.queries_per_second must not be negative"))
	}
	if cfg.Batch.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch.batch_size must be at least 1"))
	}

	if cfg.Schedule.RematchInterval < 0 {
		errs = append(errs, fmt.Errorf("schedule.rematch_interval must not be negative"))
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, fmt.Errorf("tracing.endpoint is required when tracing is enabled"))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be between 0 and 1"))
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

func validateMatching(m *MatchingConfig) []error {
	var errs []error

	w := m.Tuning.Weights
	for name, v := range map[string]float64{
		"brand": w.Brand, "model": w.Model, "capacity": w.Capacity, "color": w.Color, "carrier": w.Carrier,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("matching.tuning.weights.%s must not be negative", name))
		}
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("matching.tuning.weights must sum to 1 (got %.4f)", w.Sum()))
	}

	if err := m.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("matching.policy: %w", err))
	}

	for canonical := range m.Carriers {
		if normalize.Compact(canonical) == "" {
			errs = append(errs, fmt.Errorf("matching.carriers has an empty carrier token"))
		}
	}

	return errs
}
