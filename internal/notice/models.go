package notice

import (
	"time"
)

type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RawNotice is one candidate notice as returned by a source. ID is the only
// key used for dismissals; Number is what humans see.
type RawNotice struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"html_url"`
	State     string    `json:"state"`
	Labels    []Label   `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tags returns the label names in their original order and casing.
func (n RawNotice) Tags() []string {
	tags := make([]string, 0, len(n.Labels))
	for _, l := range n.Labels {
		tags = append(tags, l.Name)
	}
	return tags
}

type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryStatus      Category = "status"
	CategoryInfo        Category = "info"
)

type TemporalState string

const (
	StateUpcoming    TemporalState = "upcoming"
	StateActive      TemporalState = "active"
	StateUnscheduled TemporalState = "unscheduled"
	StateExpired     TemporalState = "expired"
	// StateAggregate marks a grouped unit that has no single time window.
	StateAggregate TemporalState = "aggregate"
)

// Shown reports whether a notice in this state should still be presented.
func (s TemporalState) Shown() bool {
	return s != StateExpired
}

// Instant is an optional point in time. A key that was present but could not
// be parsed yields an Instant with Set true and Valid false.
type Instant struct {
	Time  time.Time
	Set   bool
	Valid bool
}

// Usable reports whether the instant can be used for scheduling.
func (i Instant) Usable() bool {
	return i.Set && i.Valid
}

func (i Instant) String() string {
	switch {
	case !i.Set:
		return ""
	case !i.Valid:
		return "invalid"
	default:
		return i.Time.Format(time.RFC3339)
	}
}

type Metadata struct {
	Start            Instant
	End              Instant
	ExpectedDown     []string
	ExpectedDegraded []string
	Description      string
}

// IDSet is an immutable-by-convention snapshot of dismissed notice ids.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// ActiveOf returns the notices not present in the set, keeping input order.
func (s IDSet) ActiveOf(notices []RawNotice) []RawNotice {
	active := make([]RawNotice, 0, len(notices))
	for _, n := range notices {
		if !s.Has(n.ID) {
			active = append(active, n)
		}
	}
	return active
}
