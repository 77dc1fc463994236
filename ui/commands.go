package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickCmd schedules the next dashboard refresh tick
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refreshDataCmd snapshots the data source outside the update loop
func refreshDataCmd(source DataSource) tea.Cmd {
	return func() tea.Msg {
		reads, writes := source.Counters()
		return DataUpdateMsg{
			Stats:   source.CacheStats(),
			Entries: source.Entries(),
			Reads:   reads,
			Writes:  writes,
		}
	}
}

// clearCacheCmd drops every cached entry
func clearCacheCmd(source DataSource) tea.Cmd {
	return func() tea.Msg {
		source.ClearCache()
		return StatusMsg{Message: "cache cleared"}
	}
}

// resetStatsCmd zeroes the lifetime cache counters
func resetStatsCmd(source DataSource) tea.Cmd {
	return func() tea.Msg {
		source.ResetStats()
		return StatusMsg{Message: "statistics reset"}
	}
}
