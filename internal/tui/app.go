package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/noticeboard/internal/board"
	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/links"
	"github.com/pders01/noticeboard/internal/notice"
)

// Opener hands a URL to an external application.
type Opener interface {
	Open(url string) error
}

type App struct {
	config     *config.Config
	board      *board.Manager
	session    *board.Session
	catalog    *links.Catalog
	launcher   Opener
	keyHandler *KeyHandler

	linkList list.Model
	viewport viewport.Model
	help     help.Model

	view      View
	selection notice.Selection
	expanded  bool

	status     string
	statusKind StatusKind

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	now    func() time.Time
	closed bool
}

func NewApp(cfg *config.Config, mgr *board.Manager, session *board.Session, catalog *links.Catalog, launcher Opener) *App {
	linkList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	linkList.Title = "› links"
	linkList.SetShowStatusBar(false)
	linkList.SetFilteringEnabled(true)
	linkList.SetShowHelp(false)

	app := &App{
		config:   cfg,
		board:    mgr,
		session:  session,
		catalog:  catalog,
		launcher: launcher,
		linkList: linkList,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		view:     ViewLinks,
		now:      time.Now,
	}
	app.keyHandler = NewKeyHandler(app)
	app.setLinkItems()

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startRefresh(),
		a.scheduleReevaluate(),
		a.scheduleRefresh(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case refreshDoneMsg:
		return a, a.handleRefreshDone(msg)

	case reevaluateTickMsg:
		if a.closed {
			return a, nil
		}
		return a, tea.Batch(a.reevaluate(), a.scheduleReevaluate())

	case refreshTickMsg:
		if a.closed {
			return a, nil
		}
		return a, tea.Batch(a.startRefresh(), a.scheduleRefresh())

	case detailRenderedMsg:
		if a.view == ViewDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case linkOpenedMsg:
		if msg.err != nil {
			debuglog.Warnf("opening %s failed: %v", msg.name, msg.err)
			a.setStatus(wrapErr("open "+msg.name, msg.err).Error(), StatusError)
		} else {
			a.setStatus(MsgOpened(msg.name), StatusSuccess)
		}
		return a, nil
	}

	if a.view == ViewLinks {
		newList, cmd := a.linkList.Update(msg)
		a.linkList = newList
		return a, cmd
	}
	return a, nil
}

// reevaluate recomputes the selection from the current list, dismissals and
// clock.
func (a *App) reevaluate() tea.Cmd {
	a.selection = a.board.SelectionAt(a.now())
	a.setLinkItems()
	a.layout()

	if a.view != ViewDetail {
		return nil
	}
	if a.selection.Empty() {
		a.view = ViewLinks
		a.expanded = false
		return nil
	}
	return a.renderDetail()
}

func (a *App) dismissCurrent() tea.Cmd {
	if a.selection.Empty() {
		a.setStatus(MsgNoNotice, StatusWarn)
		return nil
	}
	unit := a.selection.Unit
	a.board.Dismiss(unit)
	a.setStatus(MsgDismissedCount(len(unit.NoticeIDs)), StatusSuccess)

	a.view = ViewLinks
	a.expanded = false
	return a.reevaluate()
}

func (a *App) toggleExpand() tea.Cmd {
	if a.view == ViewDetail {
		a.view = ViewLinks
		a.expanded = false
		return nil
	}
	if a.selection.Empty() {
		return nil
	}
	a.view = ViewDetail
	a.expanded = true
	a.viewport.SetContent("")
	return a.renderDetail()
}

// quit revokes pending fetches and ends a session this app started.
func (a *App) quit() tea.Cmd {
	if !a.closed {
		a.closed = true
		a.board.Close()
		if a.session != nil {
			if err := a.session.End(); err != nil {
				debuglog.Warnf("ending session failed: %v", err)
			}
		}
	}
	return tea.Quit
}

func (a *App) setLinkItems() {
	if a.catalog == nil {
		return
	}
	var services []string
	if !a.selection.Empty() {
		services = a.selection.Unit.AllServices()
	}

	all := a.catalog.All()
	items := make([]list.Item, len(all))
	for i, l := range all {
		items[i] = linkItem{link: l, affected: l.AffectedBy(services)}
	}
	a.linkList.SetItems(items)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) bannerView() string {
	return RenderBanner(a.selection, a.now(), a.width)
}

// layout sizes the list and viewport below the banner.
func (a *App) layout() {
	if a.width == 0 || a.height == 0 {
		return
	}
	bodyHeight := a.height - 2
	if banner := a.bannerView(); banner != "" {
		bodyHeight -= lipgloss.Height(banner)
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	a.linkList.SetSize(a.width, bodyHeight)
	a.viewport.Width = a.width
	a.viewport.Height = bodyHeight
}

func (a *App) View() string {
	var rows []string

	if banner := a.bannerView(); banner != "" {
		rows = append(rows, banner)
	}

	switch a.view {
	case ViewDetail:
		rows = append(rows, a.viewport.View())
	default:
		rows = append(rows, a.linkList.View())
	}

	separatorWidth := a.width
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	rows = append(rows, SeparatorStyle.Render(strings.Repeat("─", separatorWidth)))
	rows = append(rows, a.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) statusBar() string {
	helpView := a.help.View(a.keyHandler.keys)
	if a.status == "" {
		return lipgloss.NewStyle().Padding(0, 1).Render(helpView)
	}
	status := statusStyle(a.statusKind)(truncateEnd(a.status, a.width/2+10))
	return lipgloss.NewStyle().Padding(0, 1).Render(status + "  " + helpView)
}
