package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	assert.Equal(t, DefaultTTL, c.config.DefaultTTL)
	assert.Equal(t, DefaultMaxEntries, c.config.MaxEntries)
	assert.Equal(t, DefaultRefreshThreshold, c.config.RefreshThreshold)
	assert.False(t, c.config.DisableBackgroundRefresh)
	assert.NotNil(t, c.logger)
}

func TestNew_InvalidThreshold(t *testing.T) {
	c := New[string](Config{RefreshThreshold: 1.5})
	defer c.Dispose()

	assert.Equal(t, DefaultRefreshThreshold, c.config.RefreshThreshold)
}

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("a", "x")

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Writes)
	assert.Equal(t, 1, stats.TotalEntries)
}

func TestCache_Get_Miss(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	value, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Empty(t, value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(0), stats.Hits)
}

func TestCache_Get_ExpiredEntryIsCollected(t *testing.T) {
	c := New[string](Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Dispose()

	c.Set("a", "x")
	time.Sleep(60 * time.Millisecond)

	value, ok := c.Get("a")
	assert.False(t, ok)
	assert.Empty(t, value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 0, stats.TotalEntries)
}

// The defaultTTL=1s scenario: an immediate read hits, a read after expiry
// misses.
func TestCache_TTLScenario(t *testing.T) {
	c := New[string](Config{DefaultTTL: 1 * time.Second})
	defer c.Dispose()

	c.Set("a", "x")

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", value)
	assert.Equal(t, int64(1), c.Stats().Hits)

	time.Sleep(1100 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestCache_Has(t *testing.T) {
	c := New[string](Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Dispose()

	assert.False(t, c.Has("a"))

	c.Set("a", "x")
	assert.True(t, c.Has("a"))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.Has("a"))

	// Has must not touch stats.
	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestCache_VersionCarriesAcrossWrites(t *testing.T) {
	c := New[string](Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Dispose()

	c.Set("k", "v1")
	c.Set("k", "v2")
	c.Set("k", "v3")

	assert.Equal(t, 1, c.Size())
	info, ok := c.EntryInfo("k")
	require.True(t, ok)
	assert.Equal(t, int64(3), info.Version)

	// A refresh-driven write after expiry bumps the version like any set.
	time.Sleep(60 * time.Millisecond)
	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "v4", nil
	})
	require.True(t, ok)
	assert.Equal(t, "v4", value)

	info, ok = c.EntryInfo("k")
	require.True(t, ok)
	assert.Equal(t, int64(4), info.Version)
}

func TestCache_GetOrFetch_MissFetchesAndStores(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	value, ok := c.GetOrFetch(context.Background(), "todos:alice", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	require.True(t, ok)
	assert.Equal(t, "fetched", value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Refreshes)
	assert.Equal(t, int64(1), stats.Writes)
	assert.True(t, c.Has("todos:alice"))
}

func TestCache_GetOrFetch_PureMissFailureYieldsNothing(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	value, ok := c.GetOrFetch(context.Background(), "absent", func(ctx context.Context) (string, error) {
		return "", errors.New("backend down")
	})
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, int64(0), c.Stats().Refreshes)
}

func TestCache_GetOrFetch_StaleOverNullOnFailedRefresh(t *testing.T) {
	c := New[string](Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Dispose()

	c.Set("k", "stale")
	time.Sleep(60 * time.Millisecond)

	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "", errors.New("backend down")
	})
	require.True(t, ok)
	assert.Equal(t, "stale", value)

	// The expired entry survives the failed refresh.
	assert.Equal(t, 1, c.Size())
	info, ok := c.EntryInfo("k")
	require.True(t, ok)
	assert.True(t, info.Expired)
}

func TestCache_GetOrFetch_ExpiredRefreshSuccess(t *testing.T) {
	c := New[string](Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Dispose()

	c.Set("k", "old")
	time.Sleep(60 * time.Millisecond)

	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "new", nil
	})
	require.True(t, ok)
	assert.Equal(t, "new", value)
	assert.True(t, c.Has("k"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Refreshes)
}

func TestCache_GetOrFetch_HitDoesNotFetch(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("k", "cached")

	var calls atomic.Int32
	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "fetched", nil
	})
	require.True(t, ok)
	assert.Equal(t, "cached", value)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCache_GetOrFetch_NilFetchBehavesLikeGet(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("k", "v")
	value, ok := c.GetOrFetch(context.Background(), "k", nil)
	require.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok = c.GetOrFetch(context.Background(), "absent", nil)
	assert.False(t, ok)
}

func TestCache_BackgroundRefresh_TriggersPastThreshold(t *testing.T) {
	c := New[string](Config{
		DefaultTTL:       200 * time.Millisecond,
		RefreshThreshold: 0.5,
	})
	defer c.Dispose()

	c.Set("k", "v1")
	time.Sleep(120 * time.Millisecond) // past the threshold, before expiry

	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "v2", nil
	})
	require.True(t, ok)
	assert.Equal(t, "v1", value, "caller receives the pre-refresh value")

	// The refresh lands in the background.
	require.Eventually(t, func() bool {
		v, ok := c.Get("k")
		return ok && v == "v2"
	}, 500*time.Millisecond, 10*time.Millisecond)

	info, ok := c.EntryInfo("k")
	require.True(t, ok)
	assert.Equal(t, int64(2), info.Version)
}

func TestCache_BackgroundRefresh_NotBeforeThreshold(t *testing.T) {
	c := New[string](Config{
		DefaultTTL:       500 * time.Millisecond,
		RefreshThreshold: 0.5,
	})
	defer c.Dispose()

	c.Set("k", "v1")

	var calls atomic.Int32
	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "v2", nil
	})
	require.True(t, ok)
	assert.Equal(t, "v1", value)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCache_BackgroundRefresh_Disabled(t *testing.T) {
	c := New[string](Config{
		DefaultTTL:               100 * time.Millisecond,
		DisableBackgroundRefresh: true,
	})
	defer c.Dispose()

	c.Set("k", "v1")
	time.Sleep(60 * time.Millisecond)

	var calls atomic.Int32
	_, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "v2", nil
	})
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCache_BackgroundRefresh_VersionGuard(t *testing.T) {
	c := New[string](Config{
		DefaultTTL:       200 * time.Millisecond,
		RefreshThreshold: 0.5,
	})
	defer c.Dispose()

	c.Set("k", "v1")
	time.Sleep(120 * time.Millisecond)

	release := make(chan struct{})
	fetched := make(chan struct{})
	value, ok := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		<-release
		close(fetched)
		return "slow-refresh", nil
	})
	require.True(t, ok)
	assert.Equal(t, "v1", value)

	// A direct write lands while the refresh is still in flight.
	c.Set("k", "v2")

	close(release)
	<-fetched
	time.Sleep(50 * time.Millisecond) // let the refresh goroutine finish

	value, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", value, "stale refresh result must not clobber the newer write")

	info, ok := c.EntryInfo("k")
	require.True(t, ok)
	assert.Equal(t, int64(2), info.Version)
}

func TestCache_GetOrFetch_ConcurrentMissesShareOneFlight(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "shared", nil
	}

	const readers = 10
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			value, ok := c.GetOrFetch(context.Background(), "k", fetch)
			if ok {
				results[i] = value
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < readers; i++ {
		assert.Equal(t, "shared", results[i])
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("k", "v")
	assert.True(t, c.Invalidate("k"))
	assert.False(t, c.Has("k"))
	assert.False(t, c.Invalidate("k"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestCache_InvalidatePattern(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("user:1", "a")
	c.Set("user:2", "b")
	c.Set("other", "c")

	removed := c.InvalidatePattern(regexp.MustCompile(`^user:`))
	assert.Equal(t, 2, removed)
	assert.False(t, c.Has("user:1"))
	assert.False(t, c.Has("user:2"))
	assert.True(t, c.Has("other"))
	assert.Equal(t, int64(2), c.Stats().Evictions)

	assert.Equal(t, 0, c.InvalidatePattern(nil))
}

func TestCache_Clear_KeepsLifetimeStats(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("missing")

	c.Clear()

	assert.Equal(t, 0, c.Size())
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Writes)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestCache_ResetStats(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("a", "1")
	c.Get("a")
	c.Get("missing")

	c.ResetStats()

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, int64(0), stats.Writes)
	assert.Equal(t, float64(0), stats.HitRate)
	assert.Equal(t, 1, stats.TotalEntries, "entries survive a stats reset")
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New[string](Config{MaxEntries: 3})
	defer c.Dispose()

	c.Set("a", "1")
	time.Sleep(2 * time.Millisecond)
	c.Set("b", "2")
	time.Sleep(2 * time.Millisecond)
	c.Set("c", "3")
	time.Sleep(2 * time.Millisecond)

	// Freshen b and c so a is the least recently accessed.
	c.Get("b")
	c.Get("c")

	c.Set("d", "4")

	assert.Equal(t, 3, c.Size())
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.True(t, c.Has("d"))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_CapacityEviction_OverwriteDoesNotEvict(t *testing.T) {
	c := New[string](Config{MaxEntries: 2})
	defer c.Dispose()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")

	assert.Equal(t, 2, c.Size())
	assert.Equal(t, int64(0), c.Stats().Evictions)
}

func TestCache_CapacityEviction_KeepsBound(t *testing.T) {
	c := New[string](Config{MaxEntries: 5})
	defer c.Dispose()

	for i := 0; i < 6; i++ {
		c.Set(fmt.Sprintf("key%d", i), "v")
		time.Sleep(2 * time.Millisecond)
	}

	assert.Equal(t, 5, c.Size())
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.False(t, c.Has("key0"), "oldest access evicted first")
}

func TestCache_StatsConsistency(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	c.Set("a", "1")
	c.Set("b", "2")

	c.Get("a")                                   // hit
	c.Get("b")                                   // hit
	c.Get("missing")                             // miss
	c.GetOrFetch(context.Background(), "a", nil) // hit
	c.GetOrFetch(context.Background(), "nope", func(ctx context.Context) (string, error) {
		return "", errors.New("nope")
	}) // miss

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(5), stats.Hits+stats.Misses)
	assert.InDelta(t, 0.6, stats.HitRate, 1e-9)
}

func TestStats_UpdateHitRate_ZeroGuard(t *testing.T) {
	stats := Stats{}
	stats.UpdateHitRate()
	assert.Equal(t, 0.0, stats.HitRate)

	stats = Stats{Hits: 3, Misses: 1}
	stats.UpdateHitRate()
	assert.Equal(t, 0.75, stats.HitRate)
}

func TestCache_EntryInfo(t *testing.T) {
	c := New[string](Config{DefaultTTL: 100 * time.Millisecond})
	defer c.Dispose()

	_, ok := c.EntryInfo("absent")
	assert.False(t, ok)

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")

	info, ok := c.EntryInfo("k")
	require.True(t, ok)
	assert.Equal(t, "k", info.Key)
	assert.Equal(t, 100*time.Millisecond, info.TTL)
	assert.Equal(t, int64(2), info.Hits)
	assert.Equal(t, int64(1), info.Version)
	assert.False(t, info.Expired)
	assert.Greater(t, info.RemainingTTL, time.Duration(0))
	assert.GreaterOrEqual(t, info.Age, time.Duration(0))

	time.Sleep(120 * time.Millisecond)

	info, ok = c.EntryInfo("k")
	require.True(t, ok)
	assert.True(t, info.Expired)
	assert.Equal(t, time.Duration(0), info.RemainingTTL)
	assert.GreaterOrEqual(t, info.Age, 100*time.Millisecond)
}

func TestCache_Keys(t *testing.T) {
	c := New[string](Config{})
	defer c.Dispose()

	assert.Empty(t, c.Keys())

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	assert.ElementsMatch(t, []string{"a", "b", "c"}, c.Keys())
	assert.Equal(t, 3, c.Size())
}

func TestCache_Dispose_Idempotent(t *testing.T) {
	c := New[string](Config{})

	c.Set("a", "1")
	c.Dispose()
	assert.NotPanics(t, func() { c.Dispose() })

	assert.Equal(t, 0, c.Size())

	// Operations on a disposed cache are safe no-ops.
	c.Set("b", "2")
	assert.Equal(t, 0, c.Size())

	_, ok := c.Get("a")
	assert.False(t, ok)

	_, ok = c.GetOrFetch(context.Background(), "a", func(ctx context.Context) (string, error) {
		return "v", nil
	})
	assert.False(t, ok)

	assert.False(t, c.Invalidate("a"))
	assert.Equal(t, 0, c.InvalidatePattern(regexp.MustCompile(".")))

	_, err := c.ForceRefresh(context.Background(), "a")
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](Config{MaxEntries: 64})
	defer c.Dispose()

	done := make(chan bool, 30)

	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- true }()
			for j := 0; j < 50; j++ {
				c.Set(fmt.Sprintf("key%d", (i*50+j)%32), j)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- true }()
			for j := 0; j < 50; j++ {
				c.Get(fmt.Sprintf("key%d", j%32))
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- true }()
			for j := 0; j < 10; j++ {
				c.GetOrFetch(context.Background(), fmt.Sprintf("key%d", j%32), func(ctx context.Context) (int, error) {
					return j, nil
				})
			}
		}(i)
	}

	for i := 0; i < 30; i++ {
		<-done
	}

	stats := c.Stats()
	assert.LessOrEqual(t, stats.TotalEntries, 64)
	assert.Greater(t, stats.Writes, int64(0))
}

// Benchmark core operations
func BenchmarkCache_Set(b *testing.B) {
	c := New[string](Config{MaxEntries: 1024})
	defer c.Dispose()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key%d", i%1000), "value")
	}
}

func BenchmarkCache_Get(b *testing.B) {
	c := New[string](Config{MaxEntries: 1024})
	defer c.Dispose()

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key%d", i), "value")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key%d", i%100))
	}
}

func BenchmarkCache_GetOrFetch_Hit(b *testing.B) {
	c := New[string](Config{MaxEntries: 1024, DisableBackgroundRefresh: true})
	defer c.Dispose()

	fetch := func(ctx context.Context) (string, error) { return "value", nil }
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key%d", i), "value")
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrFetch(ctx, fmt.Sprintf("key%d", i%100), fetch)
	}
}
