package notice

import (
	"strings"
	"time"
)

// Dismissals filters out notices the user has already dismissed.
type Dismissals interface {
	ActiveOf(notices []RawNotice) []RawNotice
}

// Policy controls how status notices are grouped.
type Policy struct {
	// GroupThreshold is the number of status notices from which they are
	// presented as one aggregate unit. Values below 1 behave as 1.
	GroupThreshold int
}

func DefaultPolicy() Policy {
	return Policy{GroupThreshold: 1}
}

// Item is one underlying notice inside a unit.
type Item struct {
	ID       int64
	Number   int
	Title    string
	URL      string
	Services []string
}

// Unit is what the presentation layer renders as a single banner.
type Unit struct {
	Category         Category
	State            TemporalState
	Aggregate        bool
	NoticeIDs        []int64
	Title            string
	Description      string
	URL              string
	Start            Instant
	End              Instant
	ExpectedDown     []string
	ExpectedDegraded []string
	AffectedServices []string
	Items            []Item
}

// AllServices returns affected, down and degraded services, de-duplicated
// case-insensitively in first-seen order.
func (u *Unit) AllServices() []string {
	return unionFold(u.AffectedServices, u.ExpectedDown, u.ExpectedDegraded)
}

type Selection struct {
	Unit *Unit
}

func (s Selection) Empty() bool {
	return s.Unit == nil
}

type evaluated struct {
	notice   RawNotice
	category Category
	meta     Metadata
	state    TemporalState
}

// Select picks the unit to present from a notice snapshot. It has no side
// effects and relies only on its arguments. A nil dismissed means nothing
// has been dismissed.
func Select(notices []RawNotice, dismissed Dismissals, now time.Time, policy Policy) Selection {
	active := notices
	if dismissed != nil {
		active = dismissed.ActiveOf(notices)
	}

	var status, others []evaluated
	for _, n := range active {
		e := evaluate(n, now)
		if e.category == CategoryStatus {
			status = append(status, e)
			continue
		}
		if !e.state.Shown() {
			continue
		}
		others = append(others, e)
	}

	threshold := policy.GroupThreshold
	if threshold < 1 {
		threshold = 1
	}

	switch {
	case len(status) >= threshold:
		return Selection{Unit: aggregateUnit(status)}
	case len(status) > 0:
		return Selection{Unit: singleUnit(status[0])}
	case len(others) > 0:
		return Selection{Unit: singleUnit(others[0])}
	default:
		return Selection{}
	}
}

// Evaluate exposes the per-notice classification used by Select.
func Evaluate(n RawNotice, now time.Time) (Category, Metadata, TemporalState) {
	e := evaluate(n, now)
	return e.category, e.meta, e.state
}

func evaluate(n RawNotice, now time.Time) evaluated {
	meta := ParseMetadata(n.Body)
	return evaluated{
		notice:   n,
		category: CategoryOf(n.Tags()),
		meta:     meta,
		state:    ClassifyTime(meta, now),
	}
}

func singleUnit(e evaluated) *Unit {
	services := AffectedServicesFromTags(e.notice.Tags())
	return &Unit{
		Category:         e.category,
		State:            e.state,
		NoticeIDs:        []int64{e.notice.ID},
		Title:            e.notice.Title,
		Description:      e.meta.Description,
		URL:              e.notice.URL,
		Start:            e.meta.Start,
		End:              e.meta.End,
		ExpectedDown:     e.meta.ExpectedDown,
		ExpectedDegraded: e.meta.ExpectedDegraded,
		AffectedServices: services,
		Items:            []Item{itemOf(e.notice, services)},
	}
}

func aggregateUnit(group []evaluated) *Unit {
	u := &Unit{
		Category:  CategoryStatus,
		State:     StateAggregate,
		Aggregate: true,
		Title:     group[0].notice.Title,
		URL:       group[0].notice.URL,
	}
	if len(group) == 1 {
		u.Description = group[0].meta.Description
	}

	var services, down, degraded [][]string
	for _, e := range group {
		tagged := AffectedServicesFromTags(e.notice.Tags())
		u.NoticeIDs = append(u.NoticeIDs, e.notice.ID)
		u.Items = append(u.Items, itemOf(e.notice, tagged))
		services = append(services, tagged)
		down = append(down, e.meta.ExpectedDown)
		degraded = append(degraded, e.meta.ExpectedDegraded)
	}
	u.AffectedServices = unionFold(services...)
	u.ExpectedDown = unionFold(down...)
	u.ExpectedDegraded = unionFold(degraded...)
	return u
}

func itemOf(n RawNotice, services []string) Item {
	return Item{
		ID:       n.ID,
		Number:   n.Number,
		Title:    n.Title,
		URL:      n.URL,
		Services: services,
	}
}

func unionFold(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
