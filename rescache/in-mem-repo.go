package rescache

import (
	"context"
	"sync"
	"time"
)

// InMemPersistRepo is an in-process PersistRepo used in tests and
// local development.
type InMemPersistRepo struct {
	lock    sync.Mutex
	entries map[string]CacheEntry
}

func NewInMemPersistRepo() *InMemPersistRepo {
	return &InMemPersistRepo{
		entries: make(map[string]CacheEntry),
	}
}

func (m *InMemPersistRepo) Get(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	entry, ok := m.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *InMemPersistRepo) Put(ctx context.Context, entry CacheEntry) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[entry.Fingerprint] = entry
	return nil
}

func (m *InMemPersistRepo) ListExpired(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	var fps []string
	for fp, entry := range m.entries {
		if entry.CreatedAt.Before(cutoff) {
			fps = append(fps, fp)
			if len(fps) >= limit {
				break
			}
		}
	}
	return fps, nil
}

func (m *InMemPersistRepo) DeleteBatch(ctx context.Context, fingerprints []string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, fp := range fingerprints {
		delete(m.entries, fp)
	}
	return nil
}

func (m *InMemPersistRepo) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.entries)
}
