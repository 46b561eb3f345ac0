package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	score "github.com/donaldgifford/refurb-sku-matcher/pkg/scorer"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "testdb", cfg.Database.Name)
				assert.Equal(t, "testuser", cfg.Database.User)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, score.DefaultTuning(), cfg.Matching.Tuning)
				assert.Equal(t, resolver.DefaultPolicy(), cfg.Matching.Policy)
				assert.Same(t, normalize.DefaultCarrierTable(), cfg.Matching.CarrierTable())
				assert.Equal(t, 8, cfg.Batch.Concurrency)
				assert.InDelta(t, 50.0, cfg.Batch.QueriesPerSecond, 1e-9)
				assert.Equal(t, 10, cfg.Batch.Burst)
				assert.Equal(t, 500, cfg.Batch.BatchSize)
				assert.Zero(t, cfg.Schedule.RematchInterval)
				assert.Equal(t, 2*time.Hour, cfg.Schedule.StaleJobThreshold)
				assert.False(t, cfg.Tracing.Enabled)
				assert.Equal(t, "sku-matcher", cfg.Tracing.ServiceName)
				assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 1e-9)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
  password: "${TEST_DB_PASSWORD}"
`,
			envVars: map[string]string{
				"TEST_DB_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Database.Password)
			},
		},
		{
			name: "missing required database.host",
			yaml: `
database:
  name: testdb
  user: testuser
`,
			wantErr: "database.host is required",
		},
		{
			name: "missing required database.name",
			yaml: `
database:
  host: localhost
  user: testuser
`,
			wantErr: "database.name is required",
		},
		{
			name: "missing required database.user",
			yaml: `
database:
  host: localhost
  name: testdb
`,
			wantErr: "database.user is required",
		},
		{
			name: "partial tuning keeps other defaults",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
matching:
  tuning:
    base_sku_nudge: 0.002
  policy:
    unlocked_accept: 0.65
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.InDelta(t, 0.002, cfg.Matching.Tuning.BaseSkuNudge, 1e-9)
				assert.InDelta(t, 0.45, cfg.Matching.Tuning.Weights.Carrier, 1e-9)
				assert.InDelta(t, 0.7, cfg.Matching.Tuning.ModelSeverePenalty, 1e-9)
				assert.InDelta(t, 0.65, cfg.Matching.Policy.UnlockedAccept, 1e-9)
				assert.InDelta(t, 0.7, cfg.Matching.Policy.CarrierAccept, 1e-9)
			},
		},
		{
			name: "weights must sum to one",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
matching:
  tuning:
    weights:
      carrier: 0.55
`,
			wantErr: "matching.tuning.weights must sum to 1",
		},
		{
			name: "negative weight",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
matching:
  tuning:
    weights:
      brand: -0.10
      carrier: 0.65
`,
			wantErr: "matching.tuning.weights.brand must not be negative",
		},
		{
			name: "invalid policy",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
matching:
  policy:
    override_accept: 1.4
`,
			wantErr: "matching.policy: override_accept must be between 0 and 1",
		},
		{
			name: "extra carrier patterns",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
matching:
  carriers:
    CRICKET: ["CRICKET WIRELESS", "CRK"]
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "CRICKET", cfg.Matching.CarrierTable().Normalize("Cricket Wireless"))
				assert.Equal(t, "ATT", cfg.Matching.CarrierTable().Normalize("AT&T"))
			},
		},
		{
			name: "tracing enabled without endpoint",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
tracing:
  enabled: true
`,
			wantErr: "tracing.endpoint is required when tracing is enabled",
		},
		{
			name: "invalid batch settings",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
batch:
  concurrency: -1
`,
			wantErr: "batch.concurrency must be at least 1",
		},
		{
			name: "invalid logging format",
			yaml: `
database:
  host: localhost
  name: testdb
  user: testuser
logging:
  format: xml
`,
			wantErr: `logging.format must be one of: text, json (got "xml")`,
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s
  write_timeout: 60s
database:
  host: db.example.com
  port: 5433
  name: skum_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 20
batch:
  concurrency: 16
  queries_per_second: 200
  burst: 20
  batch_size: 1000
schedule:
  rematch_interval: 30m
  stale_job_threshold: 1h
tracing:
  enabled: true
  endpoint: otel-collector:4317
  insecure: true
  sample_ratio: 0.25
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "db.example.com", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, 20, cfg.Database.PoolSize)
				assert.Equal(t, 16, cfg.Batch.Concurrency)
				assert.InDelta(t, 200.0, cfg.Batch.QueriesPerSecond, 1e-9)
				assert.Equal(t, 1000, cfg.Batch.BatchSize)
				assert.Equal(t, 30*time.Minute, cfg.Schedule.RematchInterval)
				assert.Equal(t, time.Hour, cfg.Schedule.StaleJobThreshold)

				tc := cfg.Tracing.Tracing()
				assert.True(t, tc.Enabled)
				assert.True(t, tc.Insecure)
				assert.Equal(t, "otel-collector:4317", tc.Endpoint)
				assert.InDelta(t, 0.25, tc.SampleRatio, 1e-9)
				assert.Equal(t, 10*time.Second, tc.Timeout)

				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			// Set env vars for this test.
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			// Write YAML to a temp file.
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "basic DSN",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "testdb",
				User:     "testuser",
				Password: "testpass",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 dbname=testdb user=testuser password=testpass sslmode=disable",
		},
		{
			name: "production DSN",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "skum",
				User:     "admin",
				Password: "s3cret",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 dbname=skum user=admin password=s3cret sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
