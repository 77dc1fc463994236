package cache

import "sync"

var (
	defaultMu    sync.RWMutex
	defaultCache *Cache[any]
)

// InitDefault constructs and installs the process-wide default cache.
// Explicit construction and injection via New remain the primary API; the
// default exists as a convenience for call sites that share one untyped
// instance. Later calls replace the previous default without disposing it.
func InitDefault(config Config) *Cache[any] {
	c := New[any](config)
	defaultMu.Lock()
	defaultCache = c
	defaultMu.Unlock()
	return c
}

// Default returns the cache installed by InitDefault.
func Default() *Cache[any] {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultCache == nil {
		panic("cache: default instance not initialized, call InitDefault first")
	}
	return defaultCache
}

// ResetDefault disposes the default instance and uninstalls it. Primarily
// for tests.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache != nil {
		defaultCache.Dispose()
		defaultCache = nil
	}
}
