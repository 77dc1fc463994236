package cache

import (
	"time"
)

// entry is the internal record for one cached key. Entries are owned
// exclusively by the cache; values leave as copies and the struct itself
// never escapes.
type entry[V any] struct {
	key            string
	value          V
	createdAt      time.Time
	lastAccessedAt time.Time
	ttl            time.Duration
	version        int64
	hits           int64
	refreshing     bool
}

// expired reports whether the entry's TTL has fully elapsed at now.
func (e *entry[V]) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// EntryInfo is a diagnostic snapshot of a single cache entry.
type EntryInfo struct {
	Key          string        `json:"key"`
	TTL          time.Duration `json:"ttl"`
	Age          time.Duration `json:"age"`
	RemainingTTL time.Duration `json:"remaining_ttl"`
	Hits         int64         `json:"hits"`
	Version      int64         `json:"version"`
	Expired      bool          `json:"expired"`
}

// EntryInfo returns a diagnostic snapshot for key, or false if the key is
// absent. It does not touch statistics or the entry's access time; an
// expired entry still reports its last state until it is collected.
func (c *Cache[V]) EntryInfo(key string) (EntryInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return EntryInfo{}, false
	}

	age := time.Since(e.createdAt)
	remaining := e.ttl - age
	if remaining < 0 {
		remaining = 0
	}

	return EntryInfo{
		Key:          e.key,
		TTL:          e.ttl,
		Age:          age,
		RemainingTTL: remaining,
		Hits:         e.hits,
		Version:      e.version,
		Expired:      age >= e.ttl,
	}, true
}
