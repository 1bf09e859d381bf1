package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keymap struct {
	start  key.Binding
	stop   key.Binding
	copy   key.Binding
	clear  key.Binding
	quit   key.Binding
	accept key.Binding
	back   key.Binding
	up     key.Binding
	down   key.Binding
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.start, k.stop, k.copy, k.clear, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.accept, k.back, k.up, k.down}}
}

var defaultKeyMap = keymap{
	start: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "New match"),
	),
	stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "Stop"),
	),
	copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "Copy log"),
	),
	clear: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "Clear"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "Quit"),
	),
	accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "Start"),
	),
	back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "Cancel"),
	),
	up: key.NewBinding(
		key.WithKeys("up", "k", "pgup"),
		key.WithHelp("↑/pgup", "Scroll up"),
	),
	down: key.NewBinding(
		key.WithKeys("down", "j", "pgdown"),
		key.WithHelp("↓/pgdn", "Scroll down"),
	),
}
