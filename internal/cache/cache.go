package cache

import (
	"context"
)

// Store persists encoded weather records, one slot per location key.
// Read returns (blob, true, nil) when an entry exists and (nil, false, nil) on a miss.
// Write replaces the slot entirely. Stores do not judge freshness; that is the caller's policy.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, blob []byte) error
}

// InMemoryStore implements Store with a map. Not thread-safe; use with a single goroutine
// or external synchronization.
type InMemoryStore struct {
	data map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string][]byte),
	}
}

// Read implements Store.Read.
func (s *InMemoryStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	blob, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Write implements Store.Write.
func (s *InMemoryStore) Write(ctx context.Context, key string, blob []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.data[key] = append([]byte(nil), blob...)
	return nil
}
