package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the session view.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Rename  key.Binding
	Clear   key.Binding
	Refresh key.Binding
	Reasons key.Binding
	Quit    key.Binding

	// Rename modal only.
	Save   key.Binding
	Cancel key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/↓", "select"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Rename: key.NewBinding(
		key.WithKeys("n", "N", "enter"),
		key.WithHelp("n", "name"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x", "X", "d"),
		key.WithHelp("x", "clear"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "refresh"),
	),
	Reasons: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "why"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Save: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// ShortHelp returns the bindings shown on the help line, in display order.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Rename, k.Clear, k.Refresh, k.Reasons, k.Quit}
}
