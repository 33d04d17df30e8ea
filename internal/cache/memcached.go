package cache

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const keyPrefix = "attire:"

// MemcachedStore implements Store using memcached. Entries expire after retention so
// abandoned locations do not linger; freshness is still decided by the caller.
type MemcachedStore struct {
	client    *memcache.Client
	retention time.Duration
}

// NewMemcachedStore creates a MemcachedStore. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211"). timeout and maxIdleConns
// configure the client; both use package defaults if zero.
func NewMemcachedStore(addrs string, timeout time.Duration, maxIdleConns int, retention time.Duration) (*MemcachedStore, error) {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedStore{client: client, retention: retention}, nil
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// key escapes k so spaces and control bytes, which memcached rejects, never
// reach the wire.
func (s *MemcachedStore) key(k string) string {
	return keyPrefix + url.QueryEscape(k)
}

// expiration converts retention to memcached's relative expiration seconds.
func expiration(retention time.Duration) int32 {
	const maxRelativeExp = 30 * 24 * 60 * 60 // 30 days
	sec := int64(retention.Seconds())
	if sec <= 0 || sec > maxRelativeExp {
		return 24 * 60 * 60
	}
	return int32(sec)
}

// Read implements Store.Read. Returns false, nil on cache miss; false, err on error.
func (s *MemcachedStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	item, err := s.client.Get(s.key(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

// Write implements Store.Write.
func (s *MemcachedStore) Write(ctx context.Context, key string, blob []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.client.Set(&memcache.Item{
		Key:        s.key(key),
		Value:      blob,
		Expiration: expiration(s.retention),
	})
}

// Ping checks if memcached is reachable. Used for health checks.
func (s *MemcachedStore) Ping() error {
	return s.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (s *MemcachedStore) Close() error {
	return s.client.Close()
}
