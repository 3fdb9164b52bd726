package rescache

import (
	"sync"
	"time"

	"github.com/execpipe/backend/engine"
)

type memEntry struct {
	result    engine.Result
	createdAt time.Time
}

// memTier is a bounded in-memory map with first-in-first-out
// eviction and a TTL checked on read. Safe for concurrent use.
type memTier struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	order      []string // insertion order, oldest first
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

func newMemTier(maxEntries int, ttl time.Duration) *memTier {
	return &memTier{
		entries:    make(map[string]memEntry, maxEntries),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *memTier) get(fingerprint string) (engine.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[fingerprint]
	if !ok {
		return engine.Result{}, false
	}
	if m.now().Sub(e.createdAt) > m.ttl {
		delete(m.entries, fingerprint)
		m.removeFromOrder(fingerprint)
		return engine.Result{}, false
	}
	return e.result, true
}

// removeFromOrder drops the first occurrence of fingerprint so a
// later re-insert of the same key cannot leave a stale slot behind.
// Caller must hold the lock.
func (m *memTier) removeFromOrder(fingerprint string) {
	for i, key := range m.order {
		if key == fingerprint {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (m *memTier) put(fingerprint string, result engine.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[fingerprint]; exists {
		m.entries[fingerprint] = memEntry{result: result, createdAt: m.now()}
		return
	}
	for len(m.entries) >= m.maxEntries && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[fingerprint] = memEntry{result: result, createdAt: m.now()}
	m.order = append(m.order, fingerprint)
}

func (m *memTier) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
