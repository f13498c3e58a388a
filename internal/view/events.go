package view

import (
	"sort"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Linkage is an impact link with its parent event, when one exists
type Linkage struct {
	Link  model.ImpactLink
	Event *model.Event // nil when parent_id resolves to no event
}

// LinkedEvents returns the impact links whose related indicator contains
// code (case-insensitive; empty code selects all), joined to their parent
// events by record id. Unresolved parents are kept with a nil Event.
func LinkedEvents(v Views, code string) []Linkage {
	byID := make(map[string]int, len(v.Events))
	for i, e := range v.Events {
		if e.RecordID != "" {
			if _, dup := byID[e.RecordID]; !dup {
				byID[e.RecordID] = i
			}
		}
	}

	needle := strings.ToLower(code)
	var out []Linkage
	for _, l := range v.ImpactLinks {
		if needle != "" && !strings.Contains(strings.ToLower(l.RelatedIndicator), needle) {
			continue
		}
		link := Linkage{Link: l}
		if i, ok := byID[l.ParentID]; ok {
			ev := v.Events[i]
			link.Event = &ev
		}
		out = append(out, link)
	}
	return out
}

// Timeline returns the events sorted by date, undated events last
func Timeline(events []model.Event) []model.Event {
	out := append([]model.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventDate.Before(out[j].EventDate)
	})
	return out
}

// ShortName truncates an event name to max runes for chart annotations
func ShortName(e model.Event, max int) string {
	name := e.EventName
	if name == "" {
		name = "Event"
	}
	r := []rune(name)
	if max > 0 && len(r) > max {
		return string(r[:max])
	}
	return name
}
