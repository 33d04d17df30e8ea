//go:build integration
// +build integration

package cache

import (
	"testing"
	"time"
)

// TestMemcachedStore_Integration runs the store contract against a local memcached.
func TestMemcachedStore_Integration(t *testing.T) {
	s, err := NewMemcachedStore("localhost:11211", 500*time.Millisecond, 2, time.Hour)
	if err != nil {
		t.Fatalf("NewMemcachedStore() error = %v", err)
	}
	defer s.Close()
	if err := s.Ping(); err != nil {
		t.Skipf("memcached not reachable: %v", err)
	}
	_ = s.client.Delete(s.key("08540"))
	_ = s.client.Delete(s.key("98101"))
	storeContract(t, s)
}
