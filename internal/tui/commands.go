package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/fetch"
)

const (
	defaultReevaluateInterval = time.Minute
)

func (a *App) startRefresh() tea.Cmd {
	if a.closed {
		return nil
	}
	a.setStatus(MsgRefreshing, StatusInfo)
	mgr := a.board
	return func() tea.Msg {
		return refreshDoneMsg{err: mgr.Refresh(context.Background())}
	}
}

func (a *App) handleRefreshDone(msg refreshDoneMsg) tea.Cmd {
	if errors.Is(msg.err, fetch.ErrSuperseded) || errors.Is(msg.err, fetch.ErrClosed) {
		return nil
	}

	if a.status == MsgRefreshing {
		a.clearStatus()
	}
	if msg.err != nil {
		debuglog.Warnf("notice refresh failed: %v", msg.err)
		// Users only see fetch errors when debugging.
		if debuglog.Enabled(debuglog.LevelDebug) {
			a.setStatus(wrapErr("refresh", msg.err).Error(), StatusError)
		}
	}
	return a.reevaluate()
}

func (a *App) scheduleReevaluate() tea.Cmd {
	interval := a.config.Selection.ReevaluateInterval
	if interval <= 0 {
		interval = defaultReevaluateInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return reevaluateTickMsg{at: t}
	})
}

// scheduleRefresh returns nil when periodic refresh is disabled.
func (a *App) scheduleRefresh() tea.Cmd {
	interval := a.config.Selection.RefreshInterval
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	minWidth := a.config.UI.WordWrapMinWidth
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func (a *App) renderDetail() tea.Cmd {
	if a.selection.Empty() {
		return nil
	}
	md := UnitMarkdown(a.selection.Unit, a.now())

	r, err := a.getRenderer()
	if err != nil {
		return func() tea.Msg {
			return detailRenderedMsg{content: "Error initializing renderer: " + err.Error()}
		}
	}
	return func() tea.Msg {
		rendered, err := r.Render(md)
		if err != nil {
			return detailRenderedMsg{content: md}
		}
		return detailRenderedMsg{content: rendered}
	}
}

func (a *App) openSelectedLink() tea.Cmd {
	item, ok := a.linkList.SelectedItem().(linkItem)
	if !ok {
		a.setStatus(MsgNoLink, StatusWarn)
		return nil
	}
	launcher := a.launcher
	return func() tea.Msg {
		return linkOpenedMsg{name: item.link.Name, err: launcher.Open(item.link.URL)}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
