// Package state keeps crawl progress outside the process so a walk survives
// page navigation, reloads and restarts of the crawler itself.
package state

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ErrUnsupportedStore is returned by Open for an unknown URL scheme.
var ErrUnsupportedStore = errors.New("unsupported state store")

// Store is a flat string key/value store. A missing key is reported with ok=false
// and no error. Writes to different keys are not atomic with each other.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open builds a store from a URL: memory://, sqlite://<path> or redis://...
func Open(ctx context.Context, rawURL string) (Store, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid state URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "file":
		path := strings.TrimPrefix(rawURL, parsed.Scheme+"://")
		if path == "" {
			return nil, fmt.Errorf("sqlite state URL needs a path")
		}
		return OpenSQLiteStore(ctx, path)
	case "redis", "rediss":
		return OpenRedisStore(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStore, parsed.Scheme)
	}
}

// MemoryStore keeps values in process memory. It does not survive a restart
// and is meant for tests and one-shot runs.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Keys returns the keys currently held, in no particular order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
