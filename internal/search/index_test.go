package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/noticeboard/internal/notice"
)

func label(names ...string) []notice.Label {
	labels := make([]notice.Label, 0, len(names))
	for _, n := range names {
		labels = append(labels, notice.Label{Name: n})
	}
	return labels
}

func seededIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	notices := []notice.RawNotice{
		{ID: 1, Title: "Core API outage", Body: "Requests to the gateway fail", Labels: label("status", "core-api")},
		{ID: 2, Title: "Database upgrade", Body: "<!--\nexpectedDown: billing\nexpectedDegraded: reporting\n-->\nPostgres moves to a new major version", Labels: label("maintenance")},
		{ID: 3, Title: "New dashboard", Body: "Try the redesigned dashboard", Labels: label("info", "web")},
	}
	require.NoError(t, idx.Rebuild(notices))
	return idx
}

func TestIndex_SearchFields(t *testing.T) {
	idx := seededIndex(t)

	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{"title", "outage", 1},
		{"title prefix", "upgr", 2},
		{"description", "postgres", 2},
		{"tag", "web", 3},
		{"service from tag", "core-api", 1},
		{"service from metadata", "billing", 2},
		{"degraded service from metadata", "reporting", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := idx.Search(tt.query, 10)
			require.NoError(t, err)
			require.NotEmpty(t, res)
			assert.Equal(t, tt.want, res[0].Notice.ID)
		})
	}
}

func TestIndex_TitleOutranksDescription(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild([]notice.RawNotice{
		{ID: 1, Title: "Release notes", Body: "the dashboard got faster"},
		{ID: 2, Title: "Dashboard slow", Body: "investigating"},
	}))

	res, err := idx.Search("dashboard", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, int64(2), res[0].Notice.ID)
}

func TestIndex_ShortQueries(t *testing.T) {
	idx := seededIndex(t)

	for _, q := range []string{"", "a", "   ", " x "} {
		res, err := idx.Search(q, 10)
		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res, "query %q", q)
	}
}

func TestIndex_RebuildReplacesDocuments(t *testing.T) {
	idx := seededIndex(t)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, idx.Rebuild([]notice.RawNotice{{ID: 9, Title: "Only one"}}))

	count, err = idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	res, err := idx.Search("outage", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestIndex_Snippet(t *testing.T) {
	idx := seededIndex(t)

	res, err := idx.Search("postgres", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Contains(t, res[0].Snippet, "Postgres")
	assert.NotContains(t, res[0].Snippet, "expectedDown")
	assert.NotContains(t, res[0].Snippet, "reporting")
}

func TestIndex_Closed(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.Search("outage", 10)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = idx.DocCount()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"core", "api", "is", "down"}, tokenize("Core-API is DOWN"))
	assert.Empty(t, tokenize("a b c"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestFindBestSnippet(t *testing.T) {
	text := "a b c d e f g h i j k l m n o p q r s t target"
	snippet := findBestSnippet(text, []string{"target"}, 40)
	assert.Contains(t, snippet, "target")
	assert.Empty(t, findBestSnippet("", []string{"x"}, 40))
}
