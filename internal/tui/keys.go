package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tabs    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Login   key.Binding
	Signup  key.Binding
	Logout  key.Binding
	Buy     key.Binding
	Sell    key.Binding
	Watch   key.Binding
	Unwatch key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tabs:    key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "tab")),
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left")),
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Login:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		Signup:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "signup")),
		Logout:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		Buy:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy")),
		Sell:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sell")),
		Watch:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch")),
		Unwatch: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "unwatch")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tabs, k.Refresh, k.Login, k.Signup, k.Logout, k.Buy, k.Sell, k.Watch, k.Unwatch, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tabs, k.NextTab, k.Up, k.Down, k.Refresh},
		{k.Login, k.Signup, k.Logout},
		{k.Buy, k.Sell, k.Watch, k.Unwatch, k.Quit},
	}
}
