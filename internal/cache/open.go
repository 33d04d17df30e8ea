package cache

import (
	"fmt"
	"time"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend    string // "file", "sqlite", "memcached" or "in_memory"
	Dir        string
	SQLitePath string

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
	MemcachedRetention    time.Duration
}

// Open builds the Store named by opts.Backend. An empty backend means "file".
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "memcached":
		return NewMemcachedStore(opts.MemcachedAddrs, opts.MemcachedTimeout, opts.MemcachedMaxIdleConns, opts.MemcachedRetention)
	case "in_memory":
		return NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Ping checks backend reachability for stores that support it. Local stores report nil.
func Ping(s Store) error {
	if p, ok := s.(interface{ Ping() error }); ok {
		return p.Ping()
	}
	return nil
}

// Close releases backend resources for stores that hold any.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
