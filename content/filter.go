package content

import (
	"sort"
	"strings"
)

// FilterSpec narrows an event listing. Empty fields do not constrain.
type FilterSpec struct {
	Search    string `json:"search" query:"q"`
	EventType string `json:"eventType" query:"type"`
	Tag       string `json:"tag" query:"tag"`
}

// IsZero reports whether the filter constrains nothing.
func (s FilterSpec) IsZero() bool {
	return s.Search == "" && s.EventType == "" && s.Tag == ""
}

// ToggleTag selects tag, or clears the tag filter when tag is already the
// selected one.
func (s FilterSpec) ToggleTag(tag string) FilterSpec {
	if s.Tag == tag {
		s.Tag = ""
	} else {
		s.Tag = tag
	}
	return s
}

// Matches reports whether e passes every non-empty predicate of s.
func (s FilterSpec) Matches(e Event) bool {
	if s.Search != "" && !matchesSearch(e, strings.ToLower(s.Search)) {
		return false
	}
	if s.EventType != "" && e.EventType != s.EventType {
		return false
	}
	if s.Tag != "" && !e.HasTag(s.Tag) {
		return false
	}
	return true
}

func matchesSearch(e Event, needle string) bool {
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Location), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// FilterEvents returns the events that match spec, in input order. The
// result is always a new slice; events are never modified.
func FilterEvents(events []Event, spec FilterSpec) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if spec.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Option is a value/label pair for a select control.
type Option struct {
	Value string
	Label string
}

// EventTypes are the options of the event type selector.
var EventTypes = []Option{
	{Value: "", Label: "All Types"},
	{Value: "Conference", Label: "Conference"},
	{Value: "Workshop", Label: "Workshop"},
	{Value: "Meetup", Label: "Meetup"},
}

// PopularTags are offered as one-click tag filters.
var PopularTags = []string{
	"technology", "design", "conference", "workshop", "networking",
	"web", "react", "ai", "ux",
}

// CollectTags returns the distinct tags of events, sorted.
func CollectTags(events []Event) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		for _, t := range e.Tags {
			if t = strings.TrimSpace(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
