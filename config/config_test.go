package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, 10*time.Second, config.FetchTimeout)
	assert.Equal(t, DefaultUserAgent, config.UserAgent)
	assert.True(t, config.FollowRedirects)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, "json", config.OutputFormat)
	assert.Equal(t, "machinery:listings", config.RedisStream)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("FOLLOW_REDIRECTS", "false")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("OUTPUT_FORMAT", "CSV")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "2")

	config = LoadConfig()
	assert.Equal(t, 3*time.Second, config.FetchTimeout)
	assert.False(t, config.FollowRedirects)
	assert.Equal(t, 8, config.Concurrency)
	assert.Equal(t, "csv", config.OutputFormat)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 2, config.RedisDB)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"negative rate", func(c *Config) { c.SiteRatePerSecond = -1 }},
		{"zero burst", func(c *Config) { c.SiteRateBurst = 0 }},
		{"unknown format", func(c *Config) { c.OutputFormat = "xml" }},
		{"blank user agent", func(c *Config) { c.UserAgent = "  " }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateZeroRateMeansUnlimited(t *testing.T) {
	cfg := LoadConfig()
	cfg.SiteRatePerSecond = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	content := `
sites:
  Agrofy:
    - https://www.agrofy.com.br/trator-john-deere-7230j-oferta.html
    - "  "
    - https://www.agrofy.com.br/trator-case-puma-215-193793.html
  SiteX: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.agrofy.com.br/trator-john-deere-7230j-oferta.html",
		"https://www.agrofy.com.br/trator-case-puma-215-193793.html",
	}, jobs["Agrofy"])
	assert.Contains(t, jobs, "SiteX")
	assert.Empty(t, jobs["SiteX"])

	_, err = LoadJobs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseJobs([]byte("sites: [unclosed"))
	assert.Error(t, err)
}

func TestParsePairs(t *testing.T) {
	jobs, err := ParsePairs([]string{
		"Agrofy=https://a/1",
		"MercadoMaquinas=https://m/1",
		"Agrofy=https://a/2",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1", "https://a/2"}, jobs["Agrofy"])
	assert.Equal(t, []string{"https://m/1"}, jobs["MercadoMaquinas"])

	_, err = ParsePairs([]string{"no-separator"})
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	_, err = ParsePairs([]string{"Agrofy="})
	assert.Error(t, err)
}

func TestMergeAndDefaults(t *testing.T) {
	var jobs Jobs
	jobs = jobs.Merge(Jobs{"Agrofy": {"https://a/1"}})
	jobs = jobs.Merge(Jobs{"Agrofy": {"https://a/2"}})
	assert.Equal(t, []string{"https://a/1", "https://a/2"}, jobs["Agrofy"])

	defaults := DefaultJobs()
	assert.Len(t, defaults, 3)
	for site, urls := range defaults {
		assert.Len(t, urls, 2, site)
	}
}
