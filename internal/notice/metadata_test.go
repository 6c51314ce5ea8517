package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata_NoBlock(t *testing.T) {
	bodies := []string{
		"",
		"core-api down",
		"Some text\nwith lines\n",
		"an unterminated <!-- start: 2025-01-01",
		"--> closing first <!--",
	}

	for _, body := range bodies {
		meta := ParseMetadata(body)
		assert.Equal(t, body, meta.Description)
		assert.False(t, meta.Start.Set)
		assert.False(t, meta.End.Set)
		assert.Nil(t, meta.ExpectedDown)
		assert.Nil(t, meta.ExpectedDegraded)
	}
}

func TestParseMetadata_FullBlock(t *testing.T) {
	body := "<!--\nstart: 2025-03-01T10:00:00Z\nend: 2025-03-01T12:30:00+02:00\nexpectedDown: core-api, auth\nexpectedDegraded: dashboard\n-->\n\n  We are upgrading the database."

	meta := ParseMetadata(body)

	require.True(t, meta.Start.Usable())
	require.True(t, meta.End.Usable())
	assert.True(t, meta.Start.Time.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, meta.End.Time.Equal(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, []string{"core-api", "auth"}, meta.ExpectedDown)
	assert.Equal(t, []string{"dashboard"}, meta.ExpectedDegraded)
	assert.Equal(t, "We are upgrading the database.", meta.Description)
}

func TestParseMetadata_TextBeforeBlockIsKept(t *testing.T) {
	meta := ParseMetadata("Heads up: <!-- start: 2025-01-01 -->   details")
	assert.Equal(t, "Heads up: details", meta.Description)
	assert.True(t, meta.Start.Usable())
}

func TestParseMetadata_EmptySegmentsKept(t *testing.T) {
	meta := ParseMetadata("<!--\nexpectedDown: a, ,b,\n-->")
	assert.Equal(t, []string{"a", "", "b", ""}, meta.ExpectedDown)
}

func TestParseMetadata_FirstKeyWins(t *testing.T) {
	meta := ParseMetadata("<!--\nstart: 2025-01-01T00:00:00Z\nstart: 2026-01-01T00:00:00Z\nexpectedDown: first\nexpectedDown: second\n-->")
	require.True(t, meta.Start.Usable())
	assert.Equal(t, 2025, meta.Start.Time.Year())
	assert.Equal(t, []string{"first"}, meta.ExpectedDown)
}

func TestParseMetadata_InvalidFirstValueStillWins(t *testing.T) {
	meta := ParseMetadata("<!--\nstart: soon\nstart: 2025-01-01\n-->")
	assert.True(t, meta.Start.Set)
	assert.False(t, meta.Start.Valid)
	assert.False(t, meta.Start.Usable())
}

func TestParseMetadata_OnlyFirstBlock(t *testing.T) {
	body := "<!-- start: 2025-01-01 -->first\n<!-- start: 2030-01-01 -->second"
	meta := ParseMetadata(body)
	require.True(t, meta.Start.Usable())
	assert.Equal(t, 2025, meta.Start.Time.Year())
	assert.Equal(t, "first\n<!-- start: 2030-01-01 -->second", meta.Description)
}

func TestParseMetadata_KeysAreCaseSensitive(t *testing.T) {
	meta := ParseMetadata("<!--\nStart: 2025-01-01\nexpecteddown: api\nowner: ops\n-->")
	assert.False(t, meta.Start.Set)
	assert.Nil(t, meta.ExpectedDown)
}

func TestParseMetadata_MultiLineValueUsesFirstLine(t *testing.T) {
	meta := ParseMetadata("<!--\nexpectedDown: api,\n  search\n-->")
	assert.Equal(t, []string{"api", ""}, meta.ExpectedDown)
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		valid bool
	}{
		{"rfc3339 utc", "2025-06-01T08:00:00Z", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"rfc3339 fractional", "2025-06-01T08:00:00.250Z", time.Date(2025, 6, 1, 8, 0, 0, 250_000_000, time.UTC), true},
		{"rfc3339 offset", "2025-06-01T10:00:00+02:00", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"space separated", "2025-06-01 08:00:00", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"space separated offset", "2025-06-01 10:00 +02:00", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"compact offset", "2025-06-01 10:00:00 +0200", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"utc suffix", "2025-06-01 08:00 UTC", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"minutes only", "2025-06-01T08:00", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), true},
		{"date only", "2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "next tuesday", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInstant(tt.input)
			assert.True(t, got.Set)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.True(t, got.Time.Equal(tt.want), "got %v want %v", got.Time, tt.want)
			}
		})
	}
}
