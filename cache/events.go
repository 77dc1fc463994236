package cache

import (
	"time"
)

// EventType identifies the kind of cache event.
type EventType string

const (
	EventWrite    EventType = "write"
	EventHit      EventType = "hit"
	EventMiss     EventType = "miss"
	EventRefresh  EventType = "refresh"
	EventEviction EventType = "eviction"
)

// EvictionReason explains why an entry was removed.
type EvictionReason string

const (
	ReasonManual     EvictionReason = "manual"
	ReasonTTLExpired EvictionReason = "ttl-expired"
	ReasonCapacity   EvictionReason = "capacity"
)

// Event describes a single cache state change or access. Write, hit, and
// refresh events carry the value involved; eviction events carry the reason
// instead.
type Event[V any] struct {
	Type   EventType      `json:"type"`
	Key    string         `json:"key"`
	Value  V              `json:"value,omitempty"`
	Reason EvictionReason `json:"reason,omitempty"`
	Time   time.Time      `json:"time"`
}

// Listener receives cache events. Listeners run synchronously in
// registration order after the triggering operation has released the cache
// lock, so they may safely call back into the cache.
type Listener[V any] func(Event[V])

type listenerEntry[V any] struct {
	id int
	fn Listener[V]
}

// AddListener registers fn to observe every cache event, after previously
// registered listeners. The returned handle identifies the registration for
// RemoveListener.
func (c *Cache[V]) AddListener(fn Listener[V]) int {
	if fn == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return 0
	}
	c.nextListenerID++
	id := c.nextListenerID
	c.listeners = append(c.listeners, listenerEntry[V]{id: id, fn: fn})
	return id
}

// RemoveListener unregisters the listener with the given handle and reports
// whether it was registered.
func (c *Cache[V]) RemoveListener(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// notify delivers events to the listeners registered at call time. It must
// be called without c.mu held.
func (c *Cache[V]) notify(events []Event[V]) {
	if len(events) == 0 {
		return
	}

	c.mu.RLock()
	listeners := make([]listenerEntry[V], len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	if len(listeners) == 0 {
		return
	}
	for _, event := range events {
		for _, l := range listeners {
			c.dispatch(l.fn, event)
		}
	}
}

// dispatch runs a single listener, isolating panics so one failing listener
// cannot break the triggering operation or starve the remaining listeners.
func (c *Cache[V]) dispatch(fn Listener[V], event Event[V]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("cache: listener panicked on %s event for key %s: %v", event.Type, event.Key, r)
		}
	}()
	fn(event)
}

func newKeyEvent[V any](eventType EventType, key string) Event[V] {
	return Event[V]{Type: eventType, Key: key, Time: time.Now()}
}

func newValueEvent[V any](eventType EventType, key string, value V) Event[V] {
	return Event[V]{Type: eventType, Key: key, Value: value, Time: time.Now()}
}

func newEvictionEvent[V any](key string, reason EvictionReason) Event[V] {
	return Event[V]{Type: EventEviction, Key: key, Reason: reason, Time: time.Now()}
}
