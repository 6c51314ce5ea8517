package search

import "github.com/pders01/noticeboard/internal/notice"

// Searcher defines the minimal search API used by the CLI and the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// Indexer is implemented by searchers that keep their own copy of the
// notice list and must be told when it changes.
type Indexer interface {
	Rebuild(notices []notice.RawNotice) error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is a single search hit.
type Result struct {
	Notice  notice.RawNotice
	Score   float64
	Snippet string
}
