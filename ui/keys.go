package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the dashboard key bindings
type KeyMap struct {
	Pause   key.Binding
	Refresh key.Binding
	Clear   key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear cache"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset stats"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the dashboard footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Clear, k.Reset, k.Refresh, k.Quit}
}

// FullHelp returns all key bindings organized by category
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Refresh},
		{k.Clear, k.Reset},
		{k.Quit},
	}
}
