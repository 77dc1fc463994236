package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hearthhq/datacache/cache"
)

// Model represents the dashboard state
type Model struct {
	// Data
	source DataSource
	events <-chan cache.Event[any]
	stats  cache.Stats
	reads  int64
	writes int64

	// UI state
	width      int
	height     int
	loading    bool
	paused     bool
	lastUpdate time.Time

	// Components
	dashboard *DashboardView

	// Utilities
	keys    KeyMap
	styles  Styles
	spinner spinner.Model
	config  Config
}

// NewModel creates the dashboard model. events carries cache events from
// the registered listener into the update loop.
func NewModel(cfg Config, source DataSource, events <-chan cache.Event[any]) Model {
	cfg = cfg.normalize()
	styles := NewStyles(GetThemeByName(cfg.Theme))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Info

	m := Model{
		source:     source,
		events:     events,
		config:     cfg,
		loading:    true,
		keys:       DefaultKeyMap(),
		styles:     styles,
		spinner:    s,
		lastUpdate: time.Now(),
	}

	m.dashboard = NewDashboardView(cfg)

	return m
}

// Init returns initial commands for the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		refreshDataCmd(m.source),
		tickCmd(m.config.RefreshRate),
		tea.WindowSize(),
		// Leave the warm-up screen even if the cache stays empty
		tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return WarmupDoneMsg{}
		}),
	)
}

// drainEvents moves pending cache events from the listener channel into
// the feed. While paused the channel is left alone: the buffer absorbs
// what it can and the listener drops the rest.
func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			m.dashboard.AppendEvent(event)
		default:
			return
		}
	}
}

// applySnapshot records a fresh cache snapshot on the model and pushes it
// to the dashboard view.
func (m *Model) applySnapshot(msg DataUpdateMsg) {
	m.stats = msg.Stats
	m.reads = msg.Reads
	m.writes = msg.Writes
	m.lastUpdate = time.Now()
	m.dashboard.UpdateSnapshot(msg.Stats, msg.Entries, msg.Reads, msg.Writes)

	if m.loading && msg.Stats.TotalEntries > 0 {
		m.loading = false
	}
}

// Resize updates the model dimensions
func (m *Model) Resize(width, height int) {
	m.width = width
	m.height = height
	m.dashboard.Resize(width, height)
}

// IsLoading returns whether the warm-up screen is still showing
func (m Model) IsLoading() bool {
	return m.loading
}

// IsPaused returns whether dashboard updates are paused
func (m Model) IsPaused() bool {
	return m.paused
}

// Stats returns the most recent cache snapshot
func (m Model) Stats() cache.Stats {
	return m.stats
}
