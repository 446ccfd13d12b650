package storage

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/vidshare/backend/internal/models"
)

// MemoryStorage keeps blobs in memory. It backs local development without an
// object store and the service tests.
type MemoryStorage struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	types   map[string]string

	// FailKeys makes Save fail for keys with any of these prefixes.
	FailKeys []string
}

// NewMemoryStorage returns an empty MemoryStorage whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Save stores the contents of r under key.
func (m *MemoryStorage) Save(ctx context.Context, key, contentType string, r io.Reader) (models.Asset, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return models.Asset{}, fmt.Errorf("memory storage: empty key")
	}
	for _, prefix := range m.FailKeys {
		if strings.HasPrefix(key, prefix) {
			return models.Asset{}, fmt.Errorf("memory storage upload %s: injected failure", key)
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Asset{}, fmt.Errorf("memory storage read %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return models.Asset{Key: key, URL: publicURL(m.baseURL, key)}, nil
}

// Delete removes key if present.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, strings.TrimLeft(key, "/"))
	delete(m.types, strings.TrimLeft(key, "/"))
	return nil
}

// Keys lists the stored keys in sorted order.
func (m *MemoryStorage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.objects))
}

// ContentType returns the content type recorded for key.
func (m *MemoryStorage) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[key]
}
