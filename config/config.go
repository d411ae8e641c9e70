package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/machineryworker/pkg/errors"
)

// DefaultUserAgent is the client identifier sent with every fetch
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config represents the application configuration
type Config struct {
	// Fetch configuration
	FetchTimeout    time.Duration
	UserAgent       string
	FollowRedirects bool

	// Worker configuration
	Concurrency       int
	SiteRatePerSecond float64
	SiteRateBurst     int

	// Memcache configuration, used to block sites that answered with a rate limit
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration
	RedisAddr   string
	RedisDB     int
	RedisStream string

	// Postgres configuration
	PostgresDSN string

	// Output configuration
	OutputDir    string
	OutputFormat string
	JobsFile     string
	ErrorLogFile string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	timeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "10"))
	followRedirects, _ := strconv.ParseBool(getEnv("FOLLOW_REDIRECTS", "true"))
	concurrency, _ := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "4"))
	ratePerSecond, _ := strconv.ParseFloat(getEnv("SITE_RATE_PER_SECOND", "1"), 64)
	rateBurst, _ := strconv.Atoi(getEnv("SITE_RATE_BURST", "1"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		FetchTimeout:      time.Duration(timeout) * time.Second,
		UserAgent:         getEnv("USER_AGENT", DefaultUserAgent),
		FollowRedirects:   followRedirects,
		Concurrency:       concurrency,
		SiteRatePerSecond: ratePerSecond,
		SiteRateBurst:     rateBurst,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		RateLimitBlock:    time.Duration(blockSeconds) * time.Second,
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "machinery:listings"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		OutputDir:         getEnv("OUTPUT_DIR", "output"),
		OutputFormat:      strings.ToLower(getEnv("OUTPUT_FORMAT", "json")),
		JobsFile:          getEnv("JOBS_FILE", ""),
		ErrorLogFile:      getEnv("ERROR_LOG_FILE", "scrape_errors.log"),
		Environment:       getEnv("MACHINERY_ENVIRONMENT", "development"),
	}
}

// Validate checks the values that would make a run misbehave
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return apperrors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.Concurrency <= 0 {
		return apperrors.NewConfiguration("WORKER_CONCURRENCY must be positive", nil)
	}
	// Zero means no per-site limit
	if c.SiteRatePerSecond < 0 {
		return apperrors.NewConfiguration("SITE_RATE_PER_SECOND must not be negative", nil)
	}
	if c.SiteRateBurst <= 0 {
		return apperrors.NewConfiguration("SITE_RATE_BURST must be positive", nil)
	}
	switch c.OutputFormat {
	case "json", "csv":
	default:
		return apperrors.NewConfiguration(fmt.Sprintf("unsupported OUTPUT_FORMAT %q", c.OutputFormat), nil)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return apperrors.NewConfiguration("USER_AGENT must not be empty", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
