package cache

// Stats provides metrics about cache performance. Counters accumulate for
// the lifetime of the instance: Clear leaves them untouched and only
// ResetStats or disposal zeroes them.
type Stats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	Refreshes    int64   `json:"refreshes"`
	Evictions    int64   `json:"evictions"`
	Writes       int64   `json:"writes"`
	HitRate      float64 `json:"hit_rate"`
	TotalEntries int     `json:"total_entries"`
}

// UpdateHitRate recalculates the hit rate, yielding 0 when no accesses have
// occurred.
func (s *Stats) UpdateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}

// counters holds the raw lifetime tallies, guarded by the cache mutex.
type counters struct {
	hits      int64
	misses    int64
	refreshes int64
	evictions int64
	writes    int64
}

// Stats returns a snapshot of the lifetime counters together with the
// current live entry count and derived hit rate.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Hits:         c.stats.hits,
		Misses:       c.stats.misses,
		Refreshes:    c.stats.refreshes,
		Evictions:    c.stats.evictions,
		Writes:       c.stats.writes,
		TotalEntries: len(c.entries),
	}
	stats.UpdateHitRate()
	return stats
}

// ResetStats zeroes the lifetime counters without touching entries.
func (c *Cache[V]) ResetStats() {
	c.mu.Lock()
	c.stats = counters{}
	c.mu.Unlock()
}
