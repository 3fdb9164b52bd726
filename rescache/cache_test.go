package rescache

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/execpipe/backend/engine"
)

func okResult(stdout string) engine.Result {
	return engine.Result{
		Success: true,
		Stdout:  stdout,
		Status:  engine.StatusAccepted,
		CpuMs:   12,
		MemKiB:  1024,
	}
}

func newTestCache(t *testing.T, cfg Config) (*Cache, *InMemPersistRepo) {
	t.Helper()
	repo := NewInMemPersistRepo()
	return NewCache(slog.Default(), repo, cfg), repo
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("python3.11", "print(1)", "in")
	b := Fingerprint("python3.11", "print(1)", "in")
	require.Equal(t, a, b)
	require.Len(t, a, 64) // hex of 256 bits
}

func TestFingerprintSensitiveToEveryField(t *testing.T) {
	base := Fingerprint("python3.11", "print(1)", "in")
	require.NotEqual(t, base, Fingerprint("nodejs20", "print(1)", "in"))
	require.NotEqual(t, base, Fingerprint("python3.11", "print(2)", "in"))
	require.NotEqual(t, base, Fingerprint("python3.11", "print(1)", "other"))
}

func TestFingerprintFramesAreUnambiguous(t *testing.T) {
	// shifting bytes between adjacent fields must change the hash
	require.NotEqual(t,
		Fingerprint("py", "abc", ""),
		Fingerprint("py", "ab", "c"))
}

func TestBatchFingerprintOrderMatters(t *testing.T) {
	a := BatchFingerprint("py", "code", []string{"1", "2"})
	b := BatchFingerprint("py", "code", []string{"2", "1"})
	require.NotEqual(t, a, b)
	require.Equal(t, a, BatchFingerprint("py", "code", []string{"1", "2"}))
}

func TestStoreThenLookup(t *testing.T) {
	c, _ := newTestCache(t, Config{})
	ctx := context.Background()

	fp := Fingerprint("python3.11", "print(1)", "")
	require.NoError(t, c.Store(ctx, fp, okResult("1\n")))

	got, err := c.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "1\n", got.Stdout)
	require.Equal(t, int64(1), c.Stats().MemHits)
}

func TestLookupMiss(t *testing.T) {
	c, _ := newTestCache(t, Config{})

	got, err := c.Lookup(context.Background(), "nonexistent")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, int64(1), c.Stats().Misses)
}

func TestFailedResultsAreNotStored(t *testing.T) {
	c, repo := newTestCache(t, Config{})
	ctx := context.Background()

	failed := engine.Result{Success: false, Status: engine.StatusRuntimeError}
	require.NoError(t, c.Store(ctx, "fp1", failed))
	require.Equal(t, 0, repo.Len())

	got, err := c.Lookup(ctx, "fp1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStoreFailuresFlag(t *testing.T) {
	c, repo := newTestCache(t, Config{StoreFailures: true})
	ctx := context.Background()

	failed := engine.Result{Success: false, Status: engine.StatusRuntimeError}
	require.NoError(t, c.Store(ctx, "fp1", failed))
	require.Equal(t, 1, repo.Len())
}

func TestPersistHitPromotesToMemory(t *testing.T) {
	c, repo := newTestCache(t, Config{})
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, CacheEntry{
		Fingerprint: "fp1",
		Result:      okResult("persisted\n"),
		CreatedAt:   time.Now(),
	}))

	got, err := c.Lookup(ctx, "fp1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(1), c.Stats().PersistHits)

	// second lookup is served from memory
	got, err = c.Lookup(ctx, "fp1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(1), c.Stats().MemHits)
	require.Equal(t, int64(1), c.Stats().PersistHits)
}

func TestExpiredPersistEntryIsAMiss(t *testing.T) {
	c, repo := newTestCache(t, Config{PersistTTL: time.Hour})
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, CacheEntry{
		Fingerprint: "fp1",
		Result:      okResult("stale\n"),
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	}))

	got, err := c.Lookup(ctx, "fp1")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, int64(1), c.Stats().Misses)
}

func TestMemTierFifoEviction(t *testing.T) {
	m := newMemTier(3, time.Hour)
	for i := 1; i <= 4; i++ {
		m.put(fmt.Sprintf("fp%d", i), okResult(fmt.Sprintf("%d", i)))
	}
	require.Equal(t, 3, m.len())

	_, ok := m.get("fp1") // oldest, evicted
	require.False(t, ok)
	for i := 2; i <= 4; i++ {
		_, ok := m.get(fmt.Sprintf("fp%d", i))
		require.True(t, ok, "fp%d should survive", i)
	}
}

func TestMemTierTTLExpiry(t *testing.T) {
	m := newMemTier(10, time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	m.put("fp1", okResult("x"))
	_, ok := m.get("fp1")
	require.True(t, ok)

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok = m.get("fp1")
	require.False(t, ok)
}

func TestSweepDeletesExpiredOnce(t *testing.T) {
	c, repo := newTestCache(t, Config{PersistTTL: time.Hour})
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Put(ctx, CacheEntry{
			Fingerprint: fmt.Sprintf("old%d", i),
			Result:      okResult("x"),
			CreatedAt:   time.Now().Add(-2 * time.Hour),
		}))
	}
	require.NoError(t, repo.Put(ctx, CacheEntry{
		Fingerprint: "fresh",
		Result:      okResult("y"),
		CreatedAt:   time.Now(),
	}))

	deleted, err := c.Sweep(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 7, deleted)
	require.Equal(t, 1, repo.Len())

	// second run with no new writes is a no-op
	deleted, err = c.Sweep(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
	require.Equal(t, 1, repo.Len())
}
