package source

import (
	"context"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

// Static serves a fixed listing. It stands in for sources that cannot be
// fetched live and goes through Collect exactly like a live adapter.
type Static struct {
	name   string
	city   string
	events []event.Draft
}

// NewStatic creates a static adapter from a source config
func NewStatic(cfg Config) *Static {
	events := make([]event.Draft, len(cfg.Events))
	copy(events, cfg.Events)
	return &Static{name: cfg.Name, city: cfg.City, events: events}
}

func (s *Static) Name() string { return s.name }
func (s *Static) City() string { return s.city }

// Fetch returns fresh copies of the listing with dates normalized against now
func (s *Static) Fetch(_ context.Context, now time.Time) ([]*event.Draft, error) {
	drafts := make([]*event.Draft, 0, len(s.events))
	for i := range s.events {
		d := s.events[i].Clone()
		if d.Summary == "" {
			d.Summary = d.Description
		}
		d.EventDate = event.NormalizeDate(d.Date, now)
		drafts = append(drafts, d)
	}
	return drafts, nil
}
