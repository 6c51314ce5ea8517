package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/notice"
)

const AppName = "noticeboard"

// ASCII art logo lines - canonical definition
var LogoLines = []string{
	"█▄  █ █▀▀█ ▀█▀ █ █▀▀ █▀▀",
	"█ ▀▄█ █  █  █  █ █   █▀▀",
	"█   █ █▄▄█  █  █ █▄▄ █▄▄",
	"      ▀▀ board ▀▀      ",
}

const CompactLogo = `noticeboard ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#FBBF24"),
	lipgloss.Color("#F87171"),
}

var (
	PrimaryColor   = lipgloss.Color("#4ECDC4")
	SecondaryColor = lipgloss.Color("#95E1D3")
	AccentColor    = lipgloss.Color("#95E1D3")

	SurfaceColor = lipgloss.Color("#16213E")
	TextColor    = lipgloss.Color("#EAEAEA")
	MutedColor   = lipgloss.Color("#94A3B8")

	// Category colors
	MaintenanceColor = lipgloss.Color("#FBBF24")
	StatusColor      = lipgloss.Color("#F87171")
	InfoColor        = lipgloss.Color("#60A5FA")

	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#10B981")
	WarnColor    = lipgloss.Color("#FFE66D")
)

// Styled components, rebuilt by ApplyColors
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	SeparatorStyle     lipgloss.Style
	AffectedStyle      lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyColors replaces the palette with the configured one. Empty values
// keep the built-in color.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&MaintenanceColor, c.Maintenance)
	set(&StatusColor, c.Status)
	set(&InfoColor, c.Info)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	AffectedStyle = lipgloss.NewStyle().
		Foreground(StatusColor).
		Bold(true)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(WarnColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// CategoryColor is the accent used for banners of the category.
func CategoryColor(c notice.Category) lipgloss.Color {
	switch c {
	case notice.CategoryMaintenance:
		return MaintenanceColor
	case notice.CategoryStatus:
		return StatusColor
	default:
		return InfoColor
	}
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// VersionBanner renders the logo with a version tagline.
func VersionBanner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("  Service status notices %s", versionTag))
	} else {
		lines = append(lines, "  Service status notices")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(PrimaryColor).
		Padding(1, 3)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	return borderStyle.Render(banner)
}
