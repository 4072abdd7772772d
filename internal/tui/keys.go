package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"missionhub/internal/tui/focus"
)

// KeyMap holds the global bindings; views keep their own list keys
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Like     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding

	Feed        key.Binding
	Leaderboard key.Binding

	Logout key.Binding
	Help   key.Binding
	Quit   key.Binding
	Cancel key.Binding
}

// ShouldHandleKey reports whether a global binding may see msg. While a
// text field has focus only ctrl+c gets through.
func (k KeyMap) ShouldHandleKey(mode focus.Mode, msg tea.KeyMsg) bool {
	if mode == focus.ModeInput {
		return msg.String() == "ctrl+c"
	}
	return true
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Like: key.NewBinding(
			key.WithKeys(" ", "l"),
			key.WithHelp("space/l", "like"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "pgdown", "n"),
			key.WithHelp("→/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "pgup", "p"),
			key.WithHelp("←/p", "prev page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		Feed: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "feed"),
		),
		Leaderboard: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "leaderboard"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Feed, k.Leaderboard, k.Like, k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Like, k.Refresh},
		{k.Feed, k.Leaderboard},
		{k.Logout, k.Help, k.Quit},
	}
}
