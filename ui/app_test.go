package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/datacache/cache"
)

func TestNewDashboard(t *testing.T) {
	d := NewDashboard(Config{}, &fakeSource{})

	require.NotNil(t, d.program)
	assert.Equal(t, DefaultConfig, d.config)
	assert.True(t, d.IsRunning())
}

func TestDashboard_Stop(t *testing.T) {
	d := NewDashboard(DefaultConfig, &fakeSource{})

	d.Stop()
	assert.False(t, d.IsRunning())
}

func TestDashboard_CacheListenerNeverBlocks(t *testing.T) {
	d := NewDashboard(DefaultConfig, &fakeSource{})
	listener := d.CacheListener()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < eventBuffer+50; i++ {
			listener(cache.Event[any]{Type: cache.EventWrite, Key: "todos:alice", Time: time.Now()})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener blocked on a full event buffer")
	}

	assert.Len(t, d.events, eventBuffer, "overflow events are dropped")
}

func TestConfig_Normalize(t *testing.T) {
	normalized := Config{}.normalize()
	assert.Equal(t, DefaultConfig, normalized)

	custom := Config{
		Theme:       "light",
		RefreshRate: 250 * time.Millisecond,
		TimeFormat:  "15:04",
		PageSize:    5,
	}
	assert.Equal(t, custom, custom.normalize())
}
