package notice

import "time"

// ClassifyTime places a notice's time window relative to now. Both bounds
// are inclusive. An end without a usable start is ignored.
func ClassifyTime(meta Metadata, now time.Time) TemporalState {
	if !meta.Start.Usable() {
		return StateUnscheduled
	}
	start := meta.Start.Time

	if meta.End.Usable() {
		end := meta.End.Time
		switch {
		case now.Before(start):
			return StateUpcoming
		case !now.After(end):
			return StateActive
		default:
			return StateExpired
		}
	}

	if now.Before(start) {
		return StateUpcoming
	}
	return StateActive
}
