package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pders01/noticeboard/internal/notice"
)

var categoryIcons = map[notice.Category]string{
	notice.CategoryMaintenance: "⚒",
	notice.CategoryStatus:      "⚠",
	notice.CategoryInfo:        "ℹ",
}

// RenderBanner draws the selected unit as a bordered, category-colored box.
// It returns an empty string for an empty selection.
func RenderBanner(sel notice.Selection, now time.Time, width int) string {
	if sel.Empty() {
		return ""
	}
	u := sel.Unit
	color := CategoryColor(u.Category)

	header := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(fmt.Sprintf("%s %s", categoryIcons[u.Category], HeadlineOf(u)))

	rows := []string{header, lipgloss.NewStyle().Foreground(TextColor).Bold(true).Render(u.Title)}

	if window := WindowText(u, now); window != "" {
		rows = append(rows, TimeStyle.Render(window))
	}
	if services := ServicesText(u); services != "" {
		rows = append(rows, lipgloss.NewStyle().Foreground(MutedColor).Render(services))
	}
	if u.Aggregate && len(u.Items) > 1 {
		for _, it := range u.Items {
			rows = append(rows, lipgloss.NewStyle().Foreground(TextColor).Render(itemLine(it)))
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(color).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// HeadlineOf is the short label above the title, e.g. "MAINTENANCE · active".
func HeadlineOf(u *notice.Unit) string {
	label := strings.ToUpper(string(u.Category))
	if u.Aggregate {
		if len(u.NoticeIDs) == 1 {
			return label + " · 1 notice"
		}
		return fmt.Sprintf("%s · %d notices", label, len(u.NoticeIDs))
	}
	return label + " · " + string(u.State)
}

// WindowText describes the unit's schedule relative to now.
func WindowText(u *notice.Unit, now time.Time) string {
	switch u.State {
	case notice.StateUpcoming:
		text := "starts " + humanize.RelTime(u.Start.Time, now, "ago", "from now")
		if u.End.Usable() {
			text += fmt.Sprintf(" (%s – %s)", formatInstant(u.Start.Time), formatInstant(u.End.Time))
		}
		return text
	case notice.StateActive:
		if u.End.Usable() {
			return "ends " + humanize.RelTime(u.End.Time, now, "ago", "from now")
		}
		return "started " + humanize.RelTime(u.Start.Time, now, "ago", "from now")
	default:
		return ""
	}
}

// ServicesText lists expected outages and affected services.
func ServicesText(u *notice.Unit) string {
	var parts []string
	if len(u.ExpectedDown) > 0 {
		parts = append(parts, "down: "+strings.Join(u.ExpectedDown, ", "))
	}
	if len(u.ExpectedDegraded) > 0 {
		parts = append(parts, "degraded: "+strings.Join(u.ExpectedDegraded, ", "))
	}
	if len(u.AffectedServices) > 0 {
		parts = append(parts, "affects: "+strings.Join(u.AffectedServices, ", "))
	}
	return strings.Join(parts, " • ")
}

func itemLine(it notice.Item) string {
	line := "• "
	if it.Number > 0 {
		line += fmt.Sprintf("#%d ", it.Number)
	}
	return line + it.Title
}

func formatInstant(t time.Time) string {
	return t.Local().Format("Jan 2 15:04")
}

// UnitMarkdown is the expanded form of a unit for glamour rendering.
func UnitMarkdown(u *notice.Unit, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", u.Title)
	fmt.Fprintf(&b, "*%s*", HeadlineOf(u))
	if window := WindowText(u, now); window != "" {
		fmt.Fprintf(&b, " · *%s*", window)
	}
	b.WriteString("\n\n")

	if services := ServicesText(u); services != "" {
		fmt.Fprintf(&b, "**%s**\n\n", services)
	}

	if strings.TrimSpace(u.Description) != "" {
		b.WriteString(u.Description)
		b.WriteString("\n\n")
	}

	if u.Aggregate && len(u.Items) > 0 {
		for _, it := range u.Items {
			if it.URL != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", strings.TrimPrefix(itemLine(it), "• "), it.URL)
			} else {
				fmt.Fprintf(&b, "- %s\n", strings.TrimPrefix(itemLine(it), "• "))
			}
		}
		b.WriteString("\n")
	} else if u.URL != "" {
		fmt.Fprintf(&b, "[Read online](%s)\n", u.URL)
	}
	return b.String()
}

// NoticeMarkdown renders a single fetched notice, whether or not it would
// be selected.
func NoticeMarkdown(n notice.RawNotice, now time.Time) string {
	category, meta, state := notice.Evaluate(n, now)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "*%s · %s*", strings.ToUpper(string(category)), state)
	if n.Number > 0 {
		fmt.Fprintf(&b, " · *#%d*", n.Number)
	}
	if !n.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, " · *updated %s*", humanize.RelTime(n.UpdatedAt, now, "ago", "from now"))
	}
	b.WriteString("\n\n")

	if meta.Start.Set {
		fmt.Fprintf(&b, "- start: %s\n", meta.Start)
	}
	if meta.End.Set {
		fmt.Fprintf(&b, "- end: %s\n", meta.End)
	}
	if len(meta.ExpectedDown) > 0 {
		fmt.Fprintf(&b, "- expected down: %s\n", strings.Join(meta.ExpectedDown, ", "))
	}
	if len(meta.ExpectedDegraded) > 0 {
		fmt.Fprintf(&b, "- expected degraded: %s\n", strings.Join(meta.ExpectedDegraded, ", "))
	}
	if tags := n.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "- tags: %s\n", strings.Join(tags, ", "))
	}
	b.WriteString("\n")

	if strings.TrimSpace(meta.Description) != "" {
		b.WriteString(meta.Description)
		b.WriteString("\n\n")
	}
	if n.URL != "" {
		fmt.Fprintf(&b, "[Read online](%s)\n", n.URL)
	}
	return b.String()
}
