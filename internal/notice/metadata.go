package notice

import (
	"strings"
	"time"
	"unicode"
)

const (
	blockOpen  = "<!--"
	blockClose = "-->"
)

const (
	keyStart            = "start"
	keyEnd              = "end"
	keyExpectedDown     = "expectedDown"
	keyExpectedDegraded = "expectedDegraded"
)

// ParseMetadata extracts the schedule and impact fields from the first
// comment block in body. It never fails; missing or malformed fields are
// left unset.
func ParseMetadata(body string) Metadata {
	meta := Metadata{Description: body}

	open := strings.Index(body, blockOpen)
	if open < 0 {
		return meta
	}
	rest := body[open+len(blockOpen):]
	closeIdx := strings.Index(rest, blockClose)
	if closeIdx < 0 {
		return meta
	}

	interior := rest[:closeIdx]
	after := strings.TrimLeftFunc(rest[closeIdx+len(blockClose):], unicode.IsSpace)
	meta.Description = body[:open] + after

	seen := make(map[string]bool, 4)
	for _, line := range strings.Split(interior, "\n") {
		key, value, ok := splitField(line)
		if !ok || seen[key] {
			continue
		}
		switch key {
		case keyStart:
			meta.Start = parseInstant(value)
		case keyEnd:
			meta.End = parseInstant(value)
		case keyExpectedDown:
			meta.ExpectedDown = splitList(value)
		case keyExpectedDegraded:
			meta.ExpectedDegraded = splitList(value)
		default:
			continue
		}
		seen[key] = true
	}

	return meta
}

func splitField(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	return key, value, true
}

// splitList keeps empty segments: "a,,b" is three entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04 Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04 -0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseInstant(value string) Instant {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, " UTC") {
		value = strings.TrimSuffix(value, " UTC") + "Z"
		if !strings.Contains(value, "T") && strings.Count(value, " ") == 1 {
			value = strings.Replace(value, " ", "T", 1)
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Instant{Time: t, Set: true, Valid: true}
		}
	}
	return Instant{Set: true}
}
