package cache

import (
	"context"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hearthhq/datacache/logging"
)

// Default configuration values applied by New for unset Config fields.
const (
	DefaultTTL              = 5 * time.Minute
	DefaultMaxEntries       = 100
	DefaultRefreshThreshold = 0.5
)

// FetchFunc loads the value for a key from its authoritative source. The
// cache never inspects what is fetched or from where; callers supply one per
// read when they want miss and expiry handling, and one per key for
// scheduled refresh.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Config configures a Cache. All fields are optional: zero values fall back
// to the package defaults, and background refresh stays enabled unless
// explicitly disabled.
type Config struct {
	// DefaultTTL applies to writes that do not carry an explicit TTL.
	DefaultTTL time.Duration
	// MaxEntries caps the number of live entries; inserting beyond it
	// evicts the least recently accessed entry.
	MaxEntries int
	// RefreshThreshold is the fraction of an entry's TTL after which a read
	// with a fetch function proactively refreshes in the background.
	// Valid range (0, 1].
	RefreshThreshold float64
	// DisableBackgroundRefresh turns off proactive refresh on read.
	DisableBackgroundRefresh bool
	// Logger receives the cache's diagnostics; nil uses the process logger.
	Logger logging.LoggerInterface
}

// Cache is a generic in-memory key/value cache with per-entry TTL expiry,
// proactive background refresh, capacity eviction, lifetime statistics, and
// event notification. All methods are safe for concurrent use.
//
// Expiry is evaluated when an entry is observed: a read of an expired key
// counts as a miss, and the stale value is retained until a successful
// refresh replaces it, a failed refresh falls back to it, or it is
// displaced. Construct instances with New and inject them; see Default for
// the process-wide convenience instance.
type Cache[V any] struct {
	mu             sync.RWMutex
	config         Config
	logger         logging.LoggerInterface
	entries        map[string]*entry[V]
	schedules      map[string]*schedule[V]
	listeners      []listenerEntry[V]
	nextListenerID int
	stats          counters
	flight         singleflight.Group
	baseCtx        context.Context
	cancel         context.CancelFunc
	disposed       bool
}

// New creates a Cache with the given configuration.
func New[V any](config Config) *Cache[V] {
	// Set defaults
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	if config.RefreshThreshold <= 0 || config.RefreshThreshold > 1 {
		config.RefreshThreshold = DefaultRefreshThreshold
	}
	if config.Logger == nil {
		config.Logger = logging.GetLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Cache[V]{
		config:    config,
		logger:    config.Logger,
		entries:   make(map[string]*entry[V]),
		schedules: make(map[string]*schedule[V]),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, replacing any existing entry and
// bumping its version. A non-positive ttl falls back to the default.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	events := c.setLocked(key, value, ttl)
	c.mu.Unlock()

	c.notify(events)
}

// Get returns the live value for key. A missing or expired key yields the
// zero value and false; an expired entry observed here is collected with
// reason ttl-expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	now := time.Now()

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return zero, false
	}

	e, ok := c.entries[key]
	switch {
	case !ok:
		c.stats.misses++
		c.mu.Unlock()
		c.notify([]Event[V]{newKeyEvent[V](EventMiss, key)})
		return zero, false

	case e.expired(now):
		delete(c.entries, key)
		c.stats.misses++
		c.stats.evictions++
		c.mu.Unlock()
		c.notify([]Event[V]{
			newKeyEvent[V](EventMiss, key),
			newEvictionEvent[V](key, ReasonTTLExpired),
		})
		return zero, false

	default:
		e.lastAccessedAt = now
		e.hits++
		c.stats.hits++
		value := e.value
		c.mu.Unlock()
		c.notify([]Event[V]{newValueEvent(EventHit, key, value)})
		return value, true
	}
}

// GetOrFetch returns the value for key, consulting fetch on a miss or after
// expiry. Fetch failures are absorbed rather than propagated: an expired
// entry falls back to its stale value, a pure miss yields the zero value and
// false. A live entry past the refresh threshold additionally triggers a
// non-blocking background refresh.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[V]) (V, bool) {
	return c.GetOrFetchWithTTL(ctx, key, fetch, 0)
}

// GetOrFetchWithTTL behaves like GetOrFetch but applies ttl to any value
// written on behalf of this call.
func (c *Cache[V]) GetOrFetchWithTTL(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration) (V, bool) {
	var zero V
	if fetch == nil {
		return c.Get(key)
	}

	now := time.Now()

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return zero, false
	}

	e, ok := c.entries[key]
	if ok && !e.expired(now) {
		e.lastAccessedAt = now
		e.hits++
		c.stats.hits++
		value := e.value
		c.maybeRefreshLocked(e, fetch, ttl, now)
		c.mu.Unlock()
		c.notify([]Event[V]{newValueEvent(EventHit, key, value)})
		return value, true
	}

	// Miss or expired: fetch synchronously. The expired entry stays in
	// place so its value can be served if the fetch fails.
	var stale V
	hasStale := ok
	if ok {
		stale = e.value
	}
	c.stats.misses++
	c.mu.Unlock()
	c.notify([]Event[V]{newKeyEvent[V](EventMiss, key)})

	value, err := c.fetchAndStore(ctx, key, fetch, ttl)
	if err != nil {
		if hasStale {
			c.logger.Warnf("cache: refresh for key %s failed, serving stale value: %v", key, err)
			return stale, true
		}
		c.logger.Warnf("cache: fetch for key %s failed: %v", key, err)
		return zero, false
	}
	return value, true
}

// Has reports whether an unexpired entry exists for key. It does not affect
// statistics or the entry's access time.
func (c *Cache[V]) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return ok && !e.expired(time.Now())
}

// Invalidate removes the entry for key and cancels any refresh schedule
// registered for it. It reports whether an entry was removed.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	c.cancelScheduleLocked(key)
	if _, ok := c.entries[key]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, key)
	c.stats.evictions++
	c.mu.Unlock()

	c.notify([]Event[V]{newEvictionEvent[V](key, ReasonManual)})
	return true
}

// InvalidatePattern removes every entry whose key matches pattern and
// returns the number removed. Each removal follows Invalidate's bookkeeping.
func (c *Cache[V]) InvalidatePattern(pattern *regexp.Regexp) int {
	if pattern == nil {
		return 0
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return 0
	}
	var events []Event[V]
	for key := range c.entries {
		if pattern.MatchString(key) {
			c.cancelScheduleLocked(key)
			delete(c.entries, key)
			c.stats.evictions++
			events = append(events, newEvictionEvent[V](key, ReasonManual))
		}
	}
	c.mu.Unlock()

	c.notify(events)
	return len(events)
}

// Clear removes all entries and cancels all refresh schedules. Statistics
// are lifetime counters and survive a Clear; use ResetStats to zero them.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	for key := range c.schedules {
		c.cancelScheduleLocked(key)
	}
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()
}

// Size returns the number of entries currently held, including expired
// entries that have not yet been observed.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in unspecified order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Dispose cancels every refresh schedule and in-flight background fetch,
// removes all entries, and detaches all listeners. Dispose is idempotent;
// operations on a disposed cache are safe no-ops returning zero values.
func (c *Cache[V]) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	for key := range c.schedules {
		c.cancelScheduleLocked(key)
	}
	c.entries = make(map[string]*entry[V])
	c.listeners = nil
	c.mu.Unlock()

	c.cancel()
}

// setLocked inserts or replaces the entry for key and returns the events to
// emit once the lock is released. The version carries over from a replaced
// entry; inserting a new key at capacity first evicts the least recently
// accessed entry. Callers must hold c.mu.
func (c *Cache[V]) setLocked(key string, value V, ttl time.Duration) []Event[V] {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	var events []Event[V]
	prev := c.entries[key]
	if prev == nil && len(c.entries) >= c.config.MaxEntries {
		if victim := c.evictionVictimLocked(); victim != nil {
			delete(c.entries, victim.key)
			c.stats.evictions++
			events = append(events, newEvictionEvent[V](victim.key, ReasonCapacity))
		}
	}

	version := int64(1)
	if prev != nil {
		version = prev.version + 1
	}

	now := time.Now()
	c.entries[key] = &entry[V]{
		key:            key,
		value:          value,
		createdAt:      now,
		lastAccessedAt: now,
		ttl:            ttl,
		version:        version,
	}
	c.stats.writes++

	return append(events, newValueEvent(EventWrite, key, value))
}

// evictionVictimLocked picks the entry with the oldest lastAccessedAt,
// breaking ties by oldest createdAt. Callers must hold c.mu.
func (c *Cache[V]) evictionVictimLocked() *entry[V] {
	var victim *entry[V]
	for _, e := range c.entries {
		if victim == nil {
			victim = e
			continue
		}
		if e.lastAccessedAt.Before(victim.lastAccessedAt) ||
			(e.lastAccessedAt.Equal(victim.lastAccessedAt) && e.createdAt.Before(victim.createdAt)) {
			victim = e
		}
	}
	return victim
}

// maybeRefreshLocked starts a background refresh for a live entry once the
// configured fraction of its TTL has elapsed. At most one refresh is in
// flight per entry. Callers must hold c.mu.
func (c *Cache[V]) maybeRefreshLocked(e *entry[V], fetch FetchFunc[V], ttl time.Duration, now time.Time) {
	if c.config.DisableBackgroundRefresh || e.refreshing {
		return
	}
	elapsed := now.Sub(e.createdAt)
	if float64(elapsed) < c.config.RefreshThreshold*float64(e.ttl) {
		return
	}
	e.refreshing = true
	go c.backgroundRefresh(e.key, fetch, ttl, e.version)
}

// backgroundRefresh re-fetches key without blocking the read that triggered
// it. The result lands only if the entry's version is unchanged when the
// fetch completes; otherwise a newer write won the race and the result is
// discarded. The fetch runs under the cache's base context so it survives
// the triggering caller and is cancelled by Dispose.
func (c *Cache[V]) backgroundRefresh(key string, fetch FetchFunc[V], ttl time.Duration, version int64) {
	value, err := fetch(c.baseCtx)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	e, ok := c.entries[key]
	if !ok || e.version != version {
		c.mu.Unlock()
		c.logger.Debugf("cache: discarding superseded background refresh for key %s", key)
		return
	}
	if err != nil {
		e.refreshing = false
		c.mu.Unlock()
		c.logger.Warnf("cache: background refresh for key %s failed: %v", key, err)
		return
	}
	events := c.refreshedLocked(key, value, ttl)
	c.mu.Unlock()

	c.notify(events)
}

// fetchAndStore loads key via fetch, deduplicating concurrent flights for
// the same key, and stores a successful result with refresh bookkeeping.
func (c *Cache[V]) fetchAndStore(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration) (V, error) {
	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.disposed {
			c.mu.Unlock()
			return value, nil
		}
		events := c.refreshedLocked(key, value, ttl)
		c.mu.Unlock()
		c.notify(events)

		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	value, _ := result.(V)
	return value, nil
}

// refreshedLocked stores a freshly fetched value and returns the write and
// refresh events to emit. Callers must hold c.mu.
func (c *Cache[V]) refreshedLocked(key string, value V, ttl time.Duration) []Event[V] {
	events := c.setLocked(key, value, ttl)
	c.stats.refreshes++
	return append(events, newValueEvent(EventRefresh, key, value))
}
