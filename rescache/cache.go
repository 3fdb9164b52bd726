package rescache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/execpipe/backend/engine"
)

// CacheEntry is one persisted execution result.
type CacheEntry struct {
	Fingerprint string
	Result      engine.Result
	CreatedAt   time.Time
}

// PersistRepo is the persistent tier of the cache. Get returns nil
// for an absent or unreadable entry.
type PersistRepo interface {
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	// ListExpired returns up to limit fingerprints created before
	// the cutoff.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	DeleteBatch(ctx context.Context, fingerprints []string) error
}

type Config struct {
	MemMaxEntries int
	MemTTL        time.Duration
	PersistTTL    time.Duration
	// StoreFailures also caches unsuccessful results. Off by
	// default so a transient engine error never poisons retries.
	StoreFailures bool
}

const (
	DefaultMemMaxEntries = 512
	DefaultMemTTL        = 1 * time.Hour
	DefaultPersistTTL    = 24 * time.Hour
)

// Stats are process-local counters, safe for concurrent increment.
type Stats struct {
	MemHits     int64 `json:"mem_hits"`
	PersistHits int64 `json:"persist_hits"`
	Misses      int64 `json:"misses"`
	Stores      int64 `json:"stores"`
}

// Cache checks the in-memory tier first, then the persistent tier.
// A persistent hit repopulates the memory tier so the next identical
// request is served from memory.
type Cache struct {
	logger  *slog.Logger
	mem     *memTier
	persist PersistRepo
	cfg     Config

	memHits     atomic.Int64
	persistHits atomic.Int64
	misses      atomic.Int64
	stores      atomic.Int64
}

func NewCache(logger *slog.Logger, persist PersistRepo, cfg Config) *Cache {
	if cfg.MemMaxEntries <= 0 {
		cfg.MemMaxEntries = DefaultMemMaxEntries
	}
	if cfg.MemTTL <= 0 {
		cfg.MemTTL = DefaultMemTTL
	}
	if cfg.PersistTTL <= 0 {
		cfg.PersistTTL = DefaultPersistTTL
	}
	return &Cache{
		logger:  logger.With("module", "rescache"),
		mem:     newMemTier(cfg.MemMaxEntries, cfg.MemTTL),
		persist: persist,
		cfg:     cfg,
	}
}

// Lookup returns the cached result for a fingerprint, or nil when
// absent or expired.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (*engine.Result, error) {
	if res, ok := c.mem.get(fingerprint); ok {
		c.memHits.Add(1)
		return &res, nil
	}

	entry, err := c.persist.Get(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if entry == nil || time.Since(entry.CreatedAt) > c.cfg.PersistTTL {
		c.misses.Add(1)
		return nil, nil
	}

	c.persistHits.Add(1)
	c.mem.put(fingerprint, entry.Result)
	return &entry.Result, nil
}

// Store writes a result to both tiers. Unsuccessful results are
// dropped unless StoreFailures is set.
func (c *Cache) Store(ctx context.Context, fingerprint string, result engine.Result) error {
	if !result.Success && !c.cfg.StoreFailures {
		return nil
	}

	c.mem.put(fingerprint, result)
	err := c.persist.Put(ctx, CacheEntry{
		Fingerprint: fingerprint,
		Result:      result,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return err
	}
	c.stores.Add(1)
	return nil
}

func (c *Cache) Stats() Stats {
	return Stats{
		MemHits:     c.memHits.Load(),
		PersistHits: c.persistHits.Load(),
		Misses:      c.misses.Load(),
		Stores:      c.stores.Load(),
	}
}
