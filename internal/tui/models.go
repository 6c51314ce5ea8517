package tui

import (
	"time"

	"github.com/pders01/noticeboard/internal/links"
)

type View int

const (
	ViewLinks View = iota
	ViewDetail
)

type linkItem struct {
	link     links.Link
	affected bool
}

func (i linkItem) Title() string {
	if i.affected {
		return AffectedStyle.Render("⚠ " + i.link.Name)
	}
	return i.link.Name
}

func (i linkItem) Description() string {
	desc := i.link.Description
	if desc == "" {
		desc = truncateMiddle(i.link.URL, 60)
	}
	if i.affected {
		desc += " • affected"
	}
	return desc
}

func (i linkItem) FilterValue() string { return i.link.Name + " " + i.link.Service }

type refreshDoneMsg struct {
	err error
}

type reevaluateTickMsg struct {
	at time.Time
}

type refreshTickMsg struct{}

type detailRenderedMsg struct {
	content string
}

type linkOpenedMsg struct {
	name string
	err  error
}
