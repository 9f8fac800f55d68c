package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/city-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
	SortByCity  SortOrder = "city"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortByDate, SortByTitle, SortByCity:
		return true
	}
	return false
}

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByCity:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].City != events[j].City {
				return strings.ToLower(events[i].City) < strings.ToLower(events[j].City)
			}
			// If cities are equal, sort by date
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by date
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate compares two events by their normalized date.
// Returns true if event i should come before event j
func compareByDate(i, j *event.Event) bool {
	// If both dates are known, compare them
	if i.EventDate != nil && j.EventDate != nil {
		if !i.EventDate.Equal(*j.EventDate) {
			return i.EventDate.Before(*j.EventDate)
		}
	} else if i.EventDate != nil {
		// Dated events come first
		return true
	} else if j.EventDate != nil {
		return false
	}

	if i.City != j.City {
		return i.City < j.City
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
