package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hearthhq/datacache/cache"
)

// Message types for the dashboard

// TickMsg is sent periodically to trigger a snapshot refresh
type TickMsg time.Time

// DataUpdateMsg carries a fresh cache snapshot to the dashboard
type DataUpdateMsg struct {
	Stats   cache.Stats
	Entries []cache.EntryInfo
	Reads   int64
	Writes  int64
}

// ConfigUpdateMsg carries updated configuration, e.g. after a hot reload
type ConfigUpdateMsg struct {
	Config Config
}

// StatusMsg reports the outcome of a key-triggered action
type StatusMsg struct {
	Message string
}

// WarmupDoneMsg ends the warm-up screen even when no data has arrived
type WarmupDoneMsg struct{}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TickMsg:
		var cmds []tea.Cmd
		if !m.paused {
			m.drainEvents()
			cmds = append(cmds, refreshDataCmd(m.source))
		}
		cmds = append(cmds, tickCmd(m.config.RefreshRate))
		return m, tea.Batch(cmds...)

	case DataUpdateMsg:
		m.applySnapshot(msg)
		return m, nil

	case StatusMsg:
		m.dashboard.SetStatus(msg.Message)
		// Refresh immediately so the action's effect is visible
		return m, refreshDataCmd(m.source)

	case ConfigUpdateMsg:
		m.config = msg.Config.normalize()
		m.styles = NewStyles(GetThemeByName(m.config.Theme))
		m.dashboard.UpdateConfig(m.config)
		return m, nil

	case WarmupDoneMsg:
		m.loading = false
		return m, nil

	default:
		// Keep the spinner animating while warming up
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		m.dashboard.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, refreshDataCmd(m.source)

	case key.Matches(msg, m.keys.Clear):
		return m, clearCacheCmd(m.source)

	case key.Matches(msg, m.keys.Reset):
		return m, resetStatsCmd(m.source)
	}

	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	if m.loading {
		return m.renderWarmup()
	}
	return m.dashboard.View()
}

// renderWarmup shows a spinner until the first entries land in the cache
func (m Model) renderWarmup() string {
	return m.spinner.View() + " " + m.styles.Info.Render("warming the cache...")
}
