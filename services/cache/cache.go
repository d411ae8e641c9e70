package cache

import (
	"strings"
	"time"
)

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// RateLimitKey returns the key that marks site as rate limited
func RateLimitKey(site string) string {
	return strings.ToLower(strings.TrimSpace(site)) + "_rate_limited"
}
