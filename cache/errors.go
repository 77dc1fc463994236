package cache

import "errors"

var (
	// ErrNoRefreshSource is returned by ForceRefresh when no refresh
	// function was ever registered for the key via ScheduleRefresh.
	ErrNoRefreshSource = errors.New("no refresh source registered")

	// ErrDisposed is returned when an error-reporting operation is invoked
	// on a disposed cache.
	ErrDisposed = errors.New("cache disposed")
)
