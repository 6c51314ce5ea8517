package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/noticeboard/internal/board"
	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/dismissal"
	"github.com/pders01/noticeboard/internal/fetch"
	"github.com/pders01/noticeboard/internal/links"
	"github.com/pders01/noticeboard/internal/notice"
)

type listSource struct {
	notices []notice.RawNotice
	err     error
}

func (s *listSource) Name() string { return "list" }

func (s *listSource) Fetch(context.Context) ([]notice.RawNotice, error) {
	return s.notices, s.err
}

type recordingOpener struct {
	opened []string
	err    error
}

func (o *recordingOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

const testLinks = `
[[links]]
name = "API console"
url = "https://console.acme.io"
service = "core-api"

[[links]]
name = "Docs"
url = "https://docs.acme.io"
`

func testNotices() []notice.RawNotice {
	return []notice.RawNotice{
		{ID: 1, Number: 10, Title: "DB maintenance", Body: "<!--\nstart: 2025-05-01T11:00:00Z\nend: 2025-05-01T13:00:00Z\n-->\nUpgrading", Labels: []notice.Label{{Name: "maintenance"}}},
		{ID: 2, Number: 11, Title: "API outage", Body: "5xx everywhere", Labels: []notice.Label{{Name: "status"}, {Name: "core-api"}}},
	}
}

func newTestApp(t *testing.T, source *listSource) (*App, *recordingOpener) {
	t.Helper()
	cfg := config.TestConfig()

	mgr := board.NewManager(fetch.NewTracker(source), dismissal.NewStore(&dismissal.MemoryBackend{}), nil, notice.DefaultPolicy())
	session, err := board.StartSession(nil)
	require.NoError(t, err)

	catalog, err := links.Parse([]byte(testLinks))
	require.NoError(t, err)

	opener := &recordingOpener{}
	app := NewApp(cfg, mgr, session, catalog, opener)
	app.now = func() time.Time { return testNow }
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, opener
}

// refreshed runs the refresh command synchronously and feeds its result back.
func refreshed(t *testing.T, app *App) {
	t.Helper()
	cmd := app.startRefresh()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestApp_RefreshSelectsStatusFirst(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})
	assert.True(t, app.selection.Empty())

	refreshed(t, app)

	require.False(t, app.selection.Empty())
	assert.Equal(t, notice.CategoryStatus, app.selection.Unit.Category)
	assert.Empty(t, app.status)
	assert.Contains(t, app.View(), "API outage")
}

func TestApp_AffectedLinksFlagged(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})
	refreshed(t, app)

	items := app.linkList.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].(linkItem).affected)
	assert.False(t, items[1].(linkItem).affected)
}

func TestApp_DismissWalksThroughUnits(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})
	refreshed(t, app)

	app.Update(keyRune('d'))
	require.False(t, app.selection.Empty())
	assert.Equal(t, notice.CategoryMaintenance, app.selection.Unit.Category)
	assert.Equal(t, MsgDismissed, app.status)

	app.Update(keyRune('d'))
	assert.True(t, app.selection.Empty())
	assert.NotContains(t, app.View(), "DB maintenance")

	app.Update(keyRune('d'))
	assert.Equal(t, MsgNoNotice, app.status)
}

func TestApp_DismissAggregateCountsAll(t *testing.T) {
	notices := append(testNotices(), notice.RawNotice{ID: 3, Title: "Login errors", Labels: []notice.Label{{Name: "status"}}})
	app, _ := newTestApp(t, &listSource{notices: notices})
	refreshed(t, app)
	require.True(t, app.selection.Unit.Aggregate)

	app.Update(keyRune('d'))
	assert.Equal(t, MsgDismissedCount(2), app.status)
	assert.Equal(t, notice.CategoryMaintenance, app.selection.Unit.Category)
}

func TestApp_ExpandAndBack(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})

	app.Update(keyRune('e'))
	assert.Equal(t, ViewLinks, app.view, "nothing to expand")

	refreshed(t, app)

	_, cmd := app.Update(keyRune('e'))
	assert.Equal(t, ViewDetail, app.view)
	assert.True(t, app.expanded)
	require.NotNil(t, cmd)

	msg := cmd()
	rendered, ok := msg.(detailRenderedMsg)
	require.True(t, ok)
	assert.Contains(t, rendered.content, "outage")
	app.Update(msg)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewLinks, app.view)
	assert.False(t, app.expanded)
}

func TestApp_OpenLink(t *testing.T) {
	app, opener := newTestApp(t, &listSource{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, []string{"https://console.acme.io"}, opener.opened)
	assert.Equal(t, MsgOpened("API console"), app.status)

	opener.err = errors.New("no browser")
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())
	assert.Equal(t, StatusError, app.statusKind)
}

func TestApp_FetchFailureShowsNoBanner(t *testing.T) {
	app, _ := newTestApp(t, &listSource{err: errors.New("unreachable")})
	refreshed(t, app)

	assert.True(t, app.selection.Empty())
	assert.Empty(t, app.bannerView())
	assert.Empty(t, app.status, "errors stay out of the UI unless debugging")
}

func TestApp_SupersededRefreshIgnored(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})
	app.setStatus(MsgRefreshing, StatusInfo)

	_, cmd := app.Update(refreshDoneMsg{err: fetch.ErrSuperseded})
	assert.Nil(t, cmd)
	assert.Equal(t, MsgRefreshing, app.status)
}

func TestApp_ReevaluateTick(t *testing.T) {
	source := &listSource{notices: testNotices()[:1]}
	app, _ := newTestApp(t, source)
	refreshed(t, app)
	require.Equal(t, notice.StateActive, app.selection.Unit.State)

	app.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	_, cmd := app.Update(reevaluateTickMsg{at: testNow.Add(2 * time.Hour)})

	assert.True(t, app.selection.Empty(), "maintenance expired")
	assert.NotNil(t, cmd, "next tick scheduled")
}

func TestApp_QuitClosesTracker(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})

	_, cmd := app.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, app.closed)

	// Results arriving after quit are not applied.
	assert.Nil(t, app.startRefresh())
	_, cmd = app.Update(reevaluateTickMsg{})
	assert.Nil(t, cmd)
}

func TestApp_RefreshKey(t *testing.T) {
	app, _ := newTestApp(t, &listSource{notices: testNotices()})

	_, cmd := app.Update(keyRune('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, MsgRefreshing, app.status)

	app.Update(cmd())
	assert.False(t, app.selection.Empty())
}

func TestApp_HelpToggle(t *testing.T) {
	app, _ := newTestApp(t, &listSource{})
	assert.False(t, app.help.ShowAll)
	app.Update(keyRune('?'))
	assert.True(t, app.help.ShowAll)
}
