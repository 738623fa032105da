package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Nonexistent config file path would error, so load from an empty dir
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  host: example.com\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Site.Host)
	assert.Equal(t, 3, cfg.Submitter.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Submitter.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Submitter.Timeout)
	assert.Equal(t, 100, cfg.Submitter.BatchSize)
	assert.Equal(t, 10, cfg.Submitter.RateLimit)
	assert.Equal(t, "RankPilot/1.0", cfg.Submitter.UserAgent)
	assert.Equal(t, 60*time.Minute, cfg.Monitor.CheckInterval)
	assert.True(t, cfg.Monitor.AutoFix)
	assert.Equal(t, 70, cfg.Monitor.AlertThreshold)
	assert.False(t, cfg.Monitor.EnableML)
	assert.Equal(t, 4, cfg.Orchestrator.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFullConfig(t *testing.T) {
	body := `
site:
  base_url: https://example.com
  host: example.com
  index_key: key123
  name: Acme Roofing

submitter:
  engines:
    - name: indexnow
      endpoint: https://api.indexnow.org/indexnow
    - name: bing
      endpoint: https://www.bing.com/indexnow
  max_retries: 5
  retry_delay: 500ms
  batch_size: 50
  rate_limit: 30

monitor:
  check_interval: 15m
  auto_fix: false
  alert_threshold: 60
  alert_webhook: https://hooks.example.com/seo

trust:
  author_bylines: true
  https: true
  years_in_business: 12
  review_rating: 4.5
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Submitter.Engines, 2)
	assert.Equal(t, "indexnow", cfg.Submitter.Engines[0].Name)
	assert.Equal(t, "https://www.bing.com/indexnow", cfg.Submitter.Engines[1].Endpoint)
	assert.Equal(t, 5, cfg.Submitter.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Submitter.RetryDelay)
	assert.Equal(t, 50, cfg.Submitter.BatchSize)
	assert.Equal(t, 30, cfg.Submitter.RateLimit)

	assert.Equal(t, 15*time.Minute, cfg.Monitor.CheckInterval)
	assert.False(t, cfg.Monitor.AutoFix)
	assert.Equal(t, "https://hooks.example.com/seo", cfg.Monitor.AlertWebhook)

	assert.True(t, cfg.Trust.AuthorBylines)
	assert.True(t, cfg.Trust.HTTPS)
	assert.Equal(t, 12, cfg.Trust.YearsInBusiness)
	assert.InDelta(t, 4.5, cfg.Trust.ReviewRating, 0.001)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  host: example.com\n"), 0o644))

	t.Setenv("RANKPILOT_INDEX_KEY", "secret-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Site.IndexKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Submitter: SubmitterConfig{
				MaxRetries: 3,
				BatchSize:  100,
				RateLimit:  10,
			},
			Monitor:      MonitorConfig{AlertThreshold: 70},
			Orchestrator: OrchestratorConfig{Workers: 4},
		}
	}

	assert.NoError(t, base().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative retries", func(c *Config) { c.Submitter.MaxRetries = -1 }, "max_retries"},
		{"zero batch size", func(c *Config) { c.Submitter.BatchSize = 0 }, "batch_size"},
		{"zero rate limit", func(c *Config) { c.Submitter.RateLimit = 0 }, "rate_limit"},
		{"threshold too high", func(c *Config) { c.Monitor.AlertThreshold = 101 }, "alert_threshold"},
		{"zero workers", func(c *Config) { c.Orchestrator.Workers = 0 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
