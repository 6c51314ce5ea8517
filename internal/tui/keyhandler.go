package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Dismiss key.Binding
	Expand  key.Binding
	Open    key.Binding
	Refresh key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Dismiss: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		Expand:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open link")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss, k.Expand, k.Open, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Dismiss, k.Expand, k.Open},
		{k.Refresh, k.Back, k.Help, k.Quit},
	}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap()}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	// While the list filter is being typed every key belongs to it.
	if a.view == ViewLinks && a.linkList.FilterState() == list.Filtering {
		return kh.delegateToList(msg)
	}

	switch {
	case key.Matches(msg, kh.keys.Quit):
		return a, a.quit()

	case key.Matches(msg, kh.keys.Dismiss):
		return a, a.dismissCurrent()

	case key.Matches(msg, kh.keys.Expand):
		return a, a.toggleExpand()

	case key.Matches(msg, kh.keys.Refresh):
		return a, a.startRefresh()

	case key.Matches(msg, kh.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, kh.keys.Back):
		if a.view == ViewDetail {
			a.view = ViewLinks
			a.expanded = false
			return a, nil
		}
		return kh.delegateToList(msg)

	case key.Matches(msg, kh.keys.Open):
		if a.view == ViewLinks {
			return a, a.openSelectedLink()
		}
		return a, nil
	}

	if a.view == ViewDetail {
		vp, cmd := a.viewport.Update(msg)
		a.viewport = vp
		return a, cmd
	}
	return kh.delegateToList(msg)
}

func (kh *KeyHandler) delegateToList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newList, cmd := kh.app.linkList.Update(msg)
	kh.app.linkList = newList
	return kh.app, cmd
}
