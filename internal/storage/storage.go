package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pfrederiksen/city-events/internal/config"
	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/filter"
)

var (
	// ErrNotFound is returned when no event or lead matches
	ErrNotFound = errors.New("not found")

	// ErrDuplicateURL is returned when creating a second event for a URL
	ErrDuplicateURL = errors.New("event with this url already exists")
)

// Store is the event and lead store
type Store interface {
	FindByURL(ctx context.Context, originalURL string) (*event.Event, error)
	Get(ctx context.Context, id string) (*event.Event, error)
	Create(ctx context.Context, evt *event.Event) error
	Save(ctx context.Context, evt *event.Event) error
	List(ctx context.Context, f *filter.Filter) ([]*event.Event, error)

	// MarkInactiveExcept marks every event whose URL is not in urls and
	// whose status is neither inactive nor imported as inactive.
	MarkInactiveExcept(ctx context.Context, urls []string) (int, error)

	// Import moves one event to imported. Re-importing overwrites the stamps.
	Import(ctx context.Context, id, by, notes string, at time.Time) (*event.Event, error)

	CreateLead(ctx context.Context, lead *event.Lead) error
	ListLeads(ctx context.Context) ([]*event.Lead, error)

	Close() error
}

// Open creates the store selected by the storage config
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverJSON, "":
		return NewJSONStore(cfg.Path)
	case config.DriverPostgres:
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// sortEvents orders events by display date text, then creation time and id
// so the order is stable across stores.
func sortEvents(events []*event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// sortLeads orders leads newest first
func sortLeads(leads []*event.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}

// inactivatable reports whether the inactive pass may touch a status
func inactivatable(s event.Status) bool {
	return s != event.StatusInactive && s != event.StatusImported
}
