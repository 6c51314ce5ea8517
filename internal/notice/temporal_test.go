package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(t time.Time) Instant {
	return Instant{Time: t, Set: true, Valid: true}
}

func TestClassifyTime(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	invalid := Instant{Set: true}

	tests := []struct {
		name string
		meta Metadata
		want TemporalState
	}{
		{"no window", Metadata{}, StateUnscheduled},
		{"invalid start", Metadata{Start: invalid, End: at(now.Add(time.Hour))}, StateUnscheduled},
		{"end only", Metadata{End: at(now.Add(time.Hour))}, StateUnscheduled},
		{"inside window", Metadata{Start: at(now.Add(-time.Hour)), End: at(now.Add(time.Hour))}, StateActive},
		{"before window", Metadata{Start: at(now.Add(time.Minute)), End: at(now.Add(time.Hour))}, StateUpcoming},
		{"after window", Metadata{Start: at(now.Add(-2 * time.Hour)), End: at(now.Add(-time.Hour))}, StateExpired},
		{"start equals now", Metadata{Start: at(now), End: at(now.Add(time.Hour))}, StateActive},
		{"end equals now", Metadata{Start: at(now.Add(-time.Hour)), End: at(now)}, StateActive},
		{"zero length window at now", Metadata{Start: at(now), End: at(now)}, StateActive},
		{"start only future", Metadata{Start: at(now.Add(time.Second))}, StateUpcoming},
		{"start only past", Metadata{Start: at(now.Add(-time.Second))}, StateActive},
		{"start only now", Metadata{Start: at(now)}, StateActive},
		{"start with invalid end", Metadata{Start: at(now.Add(-time.Hour)), End: invalid}, StateActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTime(tt.meta, now))
		})
	}
}

func TestTemporalState_Shown(t *testing.T) {
	assert.True(t, StateActive.Shown())
	assert.True(t, StateUpcoming.Shown())
	assert.True(t, StateUnscheduled.Shown())
	assert.True(t, StateAggregate.Shown())
	assert.False(t, StateExpired.Shown())
}
