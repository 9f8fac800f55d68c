// Package filter narrows event listings for the REST query and the events
// command.
//
// Criteria combine with AND:
//   - City: case-insensitive substring of the event city
//   - Search: case-insensitive substring of title, venue or description
//   - Status: exact lifecycle status
//   - From/To: inclusive range on the normalized event date
//
// Events without a normalized date never match a date range.
//
// Example usage:
//
//	f, err := filter.Parse(r.URL.Query(), loc)
//	if err != nil {
//	    // 400
//	}
//	events = f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	City   string       `json:"city,omitempty"`
	Search string       `json:"search,omitempty"`
	Status event.Status `json:"status,omitempty"`
	From   *time.Time   `json:"startDate,omitempty"`
	To     *time.Time   `json:"endDate,omitempty"`
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.City == "" &&
		f.Search == "" &&
		f.Status == "" &&
		f.From == nil &&
		f.To == nil
}

// HasDateRange reports whether either date bound is set
func (f *Filter) HasDateRange() bool {
	return f.From != nil || f.To != nil
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.City != "" && !containsFold(evt.City, f.City) {
		return false
	}

	if f.Search != "" &&
		!containsFold(evt.Title, f.Search) &&
		!containsFold(evt.Venue, f.Search) &&
		!containsFold(evt.Description, f.Search) {
		return false
	}

	if f.Status != "" && evt.Status != f.Status {
		return false
	}

	if f.HasDateRange() {
		if evt.EventDate == nil {
			return false
		}
		if f.From != nil && evt.EventDate.Before(*f.From) {
			return false
		}
		if f.To != nil && evt.EventDate.After(*f.To) {
			return false
		}
	}

	return true
}

// Apply returns the events that match. If the filter is empty the original
// list is returned unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "City: sydney | Search: yoga | From: Feb 1, 2025"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.City != "" {
		parts = append(parts, fmt.Sprintf("City: %s", f.City))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %s", f.Search))
	}
	if f.Status != "" {
		parts = append(parts, fmt.Sprintf("Status: %s", f.Status))
	}
	if f.From != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.From.Format("Jan 2, 2006")))
	}
	if f.To != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.To.Format("Jan 2, 2006")))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter
func (f *Filter) Clone() *Filter {
	clone := *f
	if f.From != nil {
		from := *f.From
		clone.From = &from
	}
	if f.To != nil {
		to := *f.To
		clone.To = &to
	}
	return &clone
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
