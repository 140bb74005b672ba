// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the viewer.
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	PageDown  key.Binding
	PageUp    key.Binding
	FirstPage key.Binding
	LastPage  key.Binding

	// Marks
	ToggleDelete key.Binding
	Undelete     key.Binding
	ToggleUnread key.Binding

	// General
	Reload     key.Binding
	Help       key.Binding
	Logs       key.Binding
	Escape     key.Binding
	Quit       key.Binding
	QuitNoSave key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous message"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next message"),
		),
		PageDown: key.NewBinding(
			key.WithKeys(" ", "pgdown"),
			key.WithHelp("space", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("b", "pgup"),
			key.WithHelp("b", "page up"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),

		// Marks
		ToggleDelete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle delete"),
		),
		Undelete: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undelete"),
		),
		ToggleUnread: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "toggle unread"),
		),

		// General
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload mbox"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "save and quit"),
		),
		QuitNoSave: key.NewBinding(
			key.WithKeys("x", "ctrl+c"),
			key.WithHelp("x", "quit without saving"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit, k.QuitNoSave}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageDown, k.PageUp, k.FirstPage, k.LastPage}, // Navigation
		{k.ToggleDelete, k.Undelete, k.ToggleUnread},                   // Marks
		{k.Reload, k.Help, k.Logs, k.Quit, k.QuitNoSave},               // General
	}
}
