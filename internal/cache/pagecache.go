package cache

import (
	"bytes"
	"context"
)

// PageCache stores rendered pages by key. Implementations are safe for
// concurrent use and return exactly the bytes given to Set.
type PageCache interface {
	// Get reports ok=false on a miss. err is only set for backend failures.
	Get(ctx context.Context, key string) (page []byte, ok bool, err error)
	Set(ctx context.Context, key string, page []byte) error
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryPageCache keeps pages in process memory. Entries never expire.
type MemoryPageCache struct {
	items *Cache[string, []byte]
}

func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{items: NewCache[string, []byte]()}
}

func (m *MemoryPageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	page, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(page), true, nil
}

func (m *MemoryPageCache) Set(_ context.Context, key string, page []byte) error {
	m.items.Set(key, bytes.Clone(page))
	return nil
}

func (m *MemoryPageCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryPageCache) Len() int {
	return m.items.Len()
}
