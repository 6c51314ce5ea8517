package tui

import "fmt"

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used across the app.
const (
	MsgRefreshing = "Refreshing…"
	MsgDismissed  = "Dismissed"
	MsgNoNotice   = "No notice to dismiss"
	MsgNoLink     = "No link selected"
)

func MsgOpened(name string) string {
	return fmt.Sprintf("Opened %s", name)
}

func MsgDismissedCount(n int) string {
	if n == 1 {
		return MsgDismissed
	}
	return fmt.Sprintf("Dismissed %d notices", n)
}

func statusStyle(kind StatusKind) func(...string) string {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render
	case StatusWarn:
		return StatusWarnStyle.Render
	case StatusError:
		return StatusErrorStyle.Render
	default:
		return StatusInfoStyle.Render
	}
}
