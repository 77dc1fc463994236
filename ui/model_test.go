package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/datacache/cache"
)

// fakeSource is a scripted DataSource for model tests.
type fakeSource struct {
	stats   cache.Stats
	entries []cache.EntryInfo
	reads   int64
	writes  int64
	cleared int
	resets  int
}

func (f *fakeSource) CacheStats() cache.Stats    { return f.stats }
func (f *fakeSource) Entries() []cache.EntryInfo { return f.entries }
func (f *fakeSource) Counters() (int64, int64)   { return f.reads, f.writes }
func (f *fakeSource) ClearCache()                { f.cleared++ }
func (f *fakeSource) ResetStats()                { f.resets++ }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(Config{}, &fakeSource{}, events)

	assert.Equal(t, DefaultConfig, model.config)
	assert.True(t, model.IsLoading())
	assert.False(t, model.IsPaused())
	assert.NotNil(t, model.dashboard)
}

func TestModel_Init(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	assert.NotNil(t, model.Init())
}

func TestModel_QuitKey(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	_, cmd := model.Update(keyMsg('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_PauseKey(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	updated, _ := model.Update(keyMsg('p'))
	m := updated.(Model)
	assert.True(t, m.IsPaused())
	assert.True(t, m.dashboard.paused)

	updated, _ = m.Update(keyMsg('p'))
	m = updated.(Model)
	assert.False(t, m.IsPaused())
}

func TestModel_ClearKey(t *testing.T) {
	source := &fakeSource{}
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, source, events)

	_, cmd := model.Update(keyMsg('c'))
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, StatusMsg{Message: "cache cleared"}, msg)
	assert.Equal(t, 1, source.cleared)
}

func TestModel_ResetKey(t *testing.T) {
	source := &fakeSource{}
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, source, events)

	_, cmd := model.Update(keyMsg('x'))
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, StatusMsg{Message: "statistics reset"}, msg)
	assert.Equal(t, 1, source.resets)
}

func TestModel_DataUpdate(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	stats := cache.Stats{Hits: 10, Misses: 2, TotalEntries: 3, HitRate: 10.0 / 12.0}
	updated, _ := model.Update(DataUpdateMsg{
		Stats:   stats,
		Entries: []cache.EntryInfo{{Key: "todos:alice"}},
		Reads:   40,
		Writes:  7,
	})
	m := updated.(Model)

	assert.Equal(t, stats, m.Stats())
	assert.False(t, m.IsLoading(), "first populated snapshot ends warm-up")
	assert.Equal(t, int64(40), m.reads)
	assert.Equal(t, int64(7), m.writes)
}

func TestModel_EmptySnapshotKeepsWarmup(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	updated, _ := model.Update(DataUpdateMsg{Stats: cache.Stats{}})
	m := updated.(Model)

	assert.True(t, m.IsLoading())

	updated, _ = m.Update(WarmupDoneMsg{})
	m = updated.(Model)
	assert.False(t, m.IsLoading())
}

func TestModel_TickDrainsEvents(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	events <- cache.Event[any]{Type: cache.EventHit, Key: "todos:alice", Time: time.Now()}
	events <- cache.Event[any]{Type: cache.EventMiss, Key: "grocery:list:weekly", Time: time.Now()}

	updated, cmd := model.Update(TickMsg(time.Now()))
	m := updated.(Model)

	require.NotNil(t, cmd)
	assert.Len(t, m.dashboard.feed, 2)
	assert.Empty(t, events)
}

func TestModel_PausedTickLeavesEvents(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	updated, _ := model.Update(keyMsg('p'))
	m := updated.(Model)

	events <- cache.Event[any]{Type: cache.EventWrite, Key: "docs:school", Time: time.Now()}

	updated, cmd := m.Update(TickMsg(time.Now()))
	m = updated.(Model)

	require.NotNil(t, cmd, "tick keeps rescheduling while paused")
	assert.Empty(t, m.dashboard.feed)
	assert.Len(t, events, 1, "paused dashboard leaves events buffered")
}

func TestModel_ConfigUpdate(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	cfg := DefaultConfig
	cfg.Theme = "light"
	cfg.PageSize = 5

	updated, _ := model.Update(ConfigUpdateMsg{Config: cfg})
	m := updated.(Model)

	assert.Equal(t, "light", m.config.Theme)
	assert.Equal(t, 5, m.dashboard.config.PageSize)
}

func TestModel_StatusTriggersRefresh(t *testing.T) {
	source := &fakeSource{stats: cache.Stats{TotalEntries: 1}}
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, source, events)

	updated, cmd := model.Update(StatusMsg{Message: "cache cleared"})
	m := updated.(Model)

	assert.Equal(t, "cache cleared", m.dashboard.status)
	require.NotNil(t, cmd)
	assert.IsType(t, DataUpdateMsg{}, cmd())
}

func TestModel_ViewWhileWarming(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	assert.Contains(t, model.View(), "warming the cache")
}

func TestModel_Resize(t *testing.T) {
	events := make(chan cache.Event[any], 8)
	model := NewModel(DefaultConfig, &fakeSource{}, events)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 48})
	m := updated.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 48, m.height)
	assert.Equal(t, 120, m.dashboard.width)
}
