package cache

import (
	"context"
	"fmt"
	"time"
)

// schedule is a standing refresh source for one key together with its
// recurring ticker.
type schedule[V any] struct {
	key      string
	fetch    FetchFunc[V]
	interval time.Duration
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

// ScheduleRefresh registers fetch as the standing refresh source for key and
// arms a recurring timer that re-fetches and stores the result every
// interval. Re-arming a key cancels its previous schedule before the new one
// starts, so at most one schedule is ever live per key. Invalidate, Clear,
// and Dispose cancel the schedule. A nil fetch or non-positive interval arms
// nothing.
func (c *Cache[V]) ScheduleRefresh(key string, fetch FetchFunc[V], interval time.Duration) {
	if fetch == nil || interval <= 0 {
		c.logger.Warnf("cache: ignoring refresh schedule for key %s: fetch function and positive interval required", key)
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.cancelScheduleLocked(key)

	ctx, cancel := context.WithCancel(c.baseCtx)
	sch := &schedule[V]{
		key:      key,
		fetch:    fetch,
		interval: interval,
		ticker:   time.NewTicker(interval),
		cancel:   cancel,
	}
	c.schedules[key] = sch
	c.mu.Unlock()

	go c.runSchedule(ctx, sch)
}

// ForceRefresh re-fetches key from its standing refresh source regardless of
// freshness, stores the result, and returns it. It fails with
// ErrNoRefreshSource when no source was registered via ScheduleRefresh.
// Unlike read-path fetches, fetch errors are propagated: the caller
// explicitly demanded fresh data, so there is no sensible stale fallback.
func (c *Cache[V]) ForceRefresh(ctx context.Context, key string) (V, error) {
	var zero V

	c.mu.RLock()
	if c.disposed {
		c.mu.RUnlock()
		return zero, ErrDisposed
	}
	sch, ok := c.schedules[key]
	c.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("force refresh %s: %w", key, ErrNoRefreshSource)
	}

	value, err := sch.fetch(ctx)
	if err != nil {
		return zero, fmt.Errorf("force refresh %s: %w", key, err)
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return zero, ErrDisposed
	}
	events := c.refreshedLocked(key, value, 0)
	c.mu.Unlock()
	c.notify(events)

	return value, nil
}

// cancelScheduleLocked stops key's schedule if one exists. The schedule
// goroutine exits asynchronously; a fetch already in flight from the old
// schedule is version-guarded like any other refresh. Callers must hold
// c.mu.
func (c *Cache[V]) cancelScheduleLocked(key string) {
	sch, ok := c.schedules[key]
	if !ok {
		return
	}
	sch.ticker.Stop()
	sch.cancel()
	delete(c.schedules, key)
}

// runSchedule drives one key's recurring refresh until its context is
// cancelled.
func (c *Cache[V]) runSchedule(ctx context.Context, sch *schedule[V]) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sch.ticker.C:
			c.scheduledRefresh(ctx, sch)
		}
	}
}

// scheduledRefresh performs one tick of a schedule. Completion is
// version-guarded: if a newer write landed while the fetch was in flight the
// result is discarded. A key whose entry disappeared in the interim is
// repopulated, since keeping the key warm is the schedule's purpose.
func (c *Cache[V]) scheduledRefresh(ctx context.Context, sch *schedule[V]) {
	// A tick can already be buffered when the schedule is cancelled.
	if ctx.Err() != nil {
		return
	}

	c.mu.RLock()
	var version int64
	if e, ok := c.entries[sch.key]; ok {
		version = e.version
	}
	c.mu.RUnlock()

	value, err := sch.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.logger.Warnf("cache: scheduled refresh for key %s failed: %v", sch.key, err)
		return
	}

	c.mu.Lock()
	if c.disposed || ctx.Err() != nil {
		// Cancelled while the fetch was in flight; landing now would
		// resurrect an invalidated key.
		c.mu.Unlock()
		return
	}
	if e, ok := c.entries[sch.key]; ok && e.version != version {
		c.mu.Unlock()
		c.logger.Debugf("cache: discarding superseded scheduled refresh for key %s", sch.key)
		return
	}
	events := c.refreshedLocked(sch.key, value, 0)
	c.mu.Unlock()

	c.notify(events)
}
