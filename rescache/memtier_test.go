package rescache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestMemTierStaysBoundedUnderChurn(t *testing.T) {
	const maxEntries = 32
	tier := newMemTier(maxEntries, DefaultMemTTL)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 1000; i++ {
				key := fmt.Sprintf("fp-%d", rng.Intn(200))
				if rng.Intn(2) == 0 {
					tier.put(key, okResult(key))
				} else {
					if res, ok := tier.get(key); ok {
						require.Equal(t, key, res.Stdout)
					}
				}
			}
		}(uint64(w + 1))
	}
	wg.Wait()

	require.LessOrEqual(t, tier.len(), maxEntries)
}

func TestMemTierOrderDoesNotLeakOnExpiry(t *testing.T) {
	const maxEntries = 4
	tier := newMemTier(maxEntries, time.Minute)
	current := time.Unix(1700000000, 0)
	tier.now = func() time.Time { return current }

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("fp-%d", i)
		tier.put(key, okResult(key))
		current = current.Add(2 * time.Minute)
		_, ok := tier.get(key)
		require.False(t, ok)
	}

	require.Equal(t, 0, tier.len())
	require.Empty(t, tier.order, "expired keys must not accumulate in insertion order")
}

func TestMemTierFifoAfterExpiryReinsert(t *testing.T) {
	tier := newMemTier(2, time.Minute)
	current := time.Unix(1700000000, 0)
	tier.now = func() time.Time { return current }

	tier.put("a", okResult("a1"))
	current = current.Add(50 * time.Second)
	tier.put("b", okResult("b"))

	// a expires, b is still fresh
	current = current.Add(20 * time.Second)
	_, ok := tier.get("a")
	require.False(t, ok)

	// re-insert a; eviction must now remove b, the oldest live entry
	tier.put("a", okResult("a2"))
	tier.put("c", okResult("c"))

	res, ok := tier.get("a")
	require.True(t, ok, "freshly re-inserted entry must survive eviction")
	require.Equal(t, "a2", res.Stdout)
	_, ok = tier.get("b")
	require.False(t, ok)
	_, ok = tier.get("c")
	require.True(t, ok)
}

func TestMemTierOverwriteKeepsSingleSlot(t *testing.T) {
	tier := newMemTier(4, DefaultMemTTL)

	tier.put("fp", okResult("first"))
	tier.put("fp", okResult("second"))

	res, ok := tier.get("fp")
	require.True(t, ok)
	require.Equal(t, "second", res.Stdout)
	require.Equal(t, 1, tier.len())
}
