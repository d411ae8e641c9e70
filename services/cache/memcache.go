package cache

import (
	"errors"
	"time"

	"sjsage522/machineryworker/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

// probeKey is read once at startup to find out whether memcached answers
const probeKey = "machinery_probe"

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = 500 * time.Millisecond
	return &MemcacheService{client: client}
}

// Connect returns a memcache service for serverAddr, or nil when the address
// is empty or the server does not answer. Rate-limit blocking is then skipped.
func Connect(serverAddr string) CacheService {
	log := logger.ForCache()
	if serverAddr == "" {
		log.Debug().Msg("No memcache address configured, rate-limit blocking disabled")
		return nil
	}

	svc := NewMemcacheService(serverAddr)
	if _, err := svc.client.Get(probeKey); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		log.Warn().Err(err).Str("addr", serverAddr).Msg("Memcache unavailable, rate-limit blocking disabled")
		return nil
	}

	log.Info().Str("addr", serverAddr).Msg("Connected to memcache")
	return svc
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache; expirations under a second are rounded up
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	seconds := int32(expiration / time.Second)
	if expiration > 0 && seconds == 0 {
		seconds = 1
	}
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: seconds,
	})
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}
