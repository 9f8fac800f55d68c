package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/filter"
)

func newTestEvent(url, title, date string, status event.Status) *event.Event {
	evt := event.NewEvent(&event.Draft{
		Title:       title,
		OriginalURL: url,
		City:        "Sydney",
		Date:        date,
		ScrapedAt:   time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
	})
	evt.Status = status
	return evt
}

// runStoreTests exercises the Store contract against any implementation.
// newStore must return an empty store.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		s := newStore(t)
		evt := newTestEvent("https://example.com/a", "Night Run", "Fri 28 Feb", event.StatusNew)

		if err := s.Create(ctx, evt); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		byURL, err := s.FindByURL(ctx, "https://example.com/a")
		if err != nil {
			t.Fatalf("FindByURL() error = %v", err)
		}
		if byURL.ID != evt.ID || byURL.Title != "Night Run" || byURL.Status != event.StatusNew {
			t.Errorf("FindByURL() = %+v", byURL)
		}

		byID, err := s.Get(ctx, evt.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if byID.OriginalURL != evt.OriginalURL {
			t.Errorf("Get() = %+v", byID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)

		if _, err := s.FindByURL(ctx, "https://example.com/missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByURL() error = %v, want ErrNotFound", err)
		}
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
		if _, err := s.Import(ctx, "missing", "ops", "", time.Now()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Import() error = %v, want ErrNotFound", err)
		}
		if err := s.Save(ctx, newTestEvent("https://example.com/ghost", "Ghost", "", event.StatusNew)); !errors.Is(err, ErrNotFound) {
			t.Errorf("Save() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate url", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, newTestEvent("https://example.com/a", "One", "", event.StatusNew)); err != nil {
			t.Fatal(err)
		}
		err := s.Create(ctx, newTestEvent("https://example.com/a", "Two", "", event.StatusNew))
		if !errors.Is(err, ErrDuplicateURL) {
			t.Errorf("Create() error = %v, want ErrDuplicateURL", err)
		}
	})

	t.Run("save replaces fields", func(t *testing.T) {
		s := newStore(t)
		evt := newTestEvent("https://example.com/a", "Old", "Fri 28 Feb", event.StatusNew)
		if err := s.Create(ctx, evt); err != nil {
			t.Fatal(err)
		}

		loaded, _ := s.Get(ctx, evt.ID)
		loaded.Title = "New"
		loaded.Status = event.StatusUpdated
		loaded.Category = []string{"Sports", "Outdoor"}
		if err := s.Save(ctx, loaded); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, _ := s.Get(ctx, evt.ID)
		if got.Title != "New" || got.Status != event.StatusUpdated {
			t.Errorf("Save() not applied: %+v", got)
		}
		if len(got.Category) != 2 || got.Category[1] != "Outdoor" {
			t.Errorf("Category = %v", got.Category)
		}
	})

	t.Run("list filters and sorts by date text", func(t *testing.T) {
		s := newStore(t)
		feb20 := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)

		b := newTestEvent("https://example.com/b", "Beach Yoga", "Sun 23 Feb", event.StatusNew)
		a := newTestEvent("https://example.com/a", "Harbour Run", "Fri 28 Feb", event.StatusUpdated)
		c := newTestEvent("https://example.com/c", "Coffee Festival", "Sat 22 Feb", event.StatusNew)
		c.City = "Melbourne"
		c.EventDate = &feb20
		for _, evt := range []*event.Event{b, a, c} {
			if err := s.Create(ctx, evt); err != nil {
				t.Fatal(err)
			}
		}

		all, err := s.List(ctx, &filter.Filter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if got := titles(all); got != "[Harbour Run Coffee Festival Beach Yoga]" {
			t.Errorf("List() order = %s", got)
		}

		sydney, _ := s.List(ctx, &filter.Filter{City: "syd"})
		if len(sydney) != 2 {
			t.Errorf("city filter returned %d, want 2", len(sydney))
		}

		search, _ := s.List(ctx, &filter.Filter{Search: "YOGA"})
		if got := titles(search); got != "[Beach Yoga]" {
			t.Errorf("search filter = %s", got)
		}

		status, _ := s.List(ctx, &filter.Filter{Status: event.StatusUpdated})
		if got := titles(status); got != "[Harbour Run]" {
			t.Errorf("status filter = %s", got)
		}

		ranged, _ := s.List(ctx, &filter.Filter{From: &feb20, To: &feb20})
		if got := titles(ranged); got != "[Coffee Festival]" {
			t.Errorf("date filter = %s", got)
		}
	})

	t.Run("mark inactive except", func(t *testing.T) {
		s := newStore(t)
		seen := newTestEvent("https://example.com/seen", "Seen", "", event.StatusNew)
		gone := newTestEvent("https://example.com/gone", "Gone", "", event.StatusUpdated)
		imported := newTestEvent("https://example.com/imported", "Imported", "", event.StatusImported)
		inactive := newTestEvent("https://example.com/inactive", "Inactive", "", event.StatusInactive)
		for _, evt := range []*event.Event{seen, gone, imported, inactive} {
			if err := s.Create(ctx, evt); err != nil {
				t.Fatal(err)
			}
		}

		n, err := s.MarkInactiveExcept(ctx, []string{"https://example.com/seen"})
		if err != nil {
			t.Fatalf("MarkInactiveExcept() error = %v", err)
		}
		if n != 1 {
			t.Errorf("MarkInactiveExcept() = %d, want 1", n)
		}

		want := map[string]event.Status{
			seen.ID:     event.StatusNew,
			gone.ID:     event.StatusInactive,
			imported.ID: event.StatusImported,
			inactive.ID: event.StatusInactive,
		}
		for id, status := range want {
			got, _ := s.Get(ctx, id)
			if got.Status != status {
				t.Errorf("%s status = %s, want %s", got.Title, got.Status, status)
			}
		}
	})

	t.Run("mark inactive with no urls", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, newTestEvent("https://example.com/a", "A", "", event.StatusNew)); err != nil {
			t.Fatal(err)
		}
		n, err := s.MarkInactiveExcept(ctx, nil)
		if err != nil || n != 1 {
			t.Errorf("MarkInactiveExcept(nil) = %d, %v; want 1, nil", n, err)
		}
	})

	t.Run("import stamps and re-import overwrites", func(t *testing.T) {
		s := newStore(t)
		evt := newTestEvent("https://example.com/a", "A", "", event.StatusUpdated)
		if err := s.Create(ctx, evt); err != nil {
			t.Fatal(err)
		}

		first := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
		got, err := s.Import(ctx, evt.ID, "alice", "front page", first)
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if got.Status != event.StatusImported || got.ImportedBy != "alice" || got.ImportNotes != "front page" {
			t.Errorf("Import() = %+v", got)
		}

		second := first.Add(time.Hour)
		if _, err := s.Import(ctx, evt.ID, "bob", "", second); err != nil {
			t.Fatal(err)
		}
		stored, _ := s.Get(ctx, evt.ID)
		if stored.ImportedBy != "bob" || stored.ImportNotes != "" || stored.ImportedAt == nil || !stored.ImportedAt.Equal(second) {
			t.Errorf("re-import = %+v", stored)
		}
	})

	t.Run("leads newest first", func(t *testing.T) {
		s := newStore(t)
		evt := newTestEvent("https://example.com/a", "A", "", event.StatusNew)
		base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

		for i := 0; i < 3; i++ {
			lead := event.NewLead(fmt.Sprintf("user%d@example.com", i), true, evt, base.Add(time.Duration(i)*time.Minute))
			if err := s.CreateLead(ctx, lead); err != nil {
				t.Fatalf("CreateLead() error = %v", err)
			}
		}

		leads, err := s.ListLeads(ctx)
		if err != nil {
			t.Fatalf("ListLeads() error = %v", err)
		}
		if len(leads) != 3 {
			t.Fatalf("ListLeads() returned %d, want 3", len(leads))
		}
		if leads[0].Email != "user2@example.com" || leads[2].Email != "user0@example.com" {
			t.Errorf("order = %s, %s, %s", leads[0].Email, leads[1].Email, leads[2].Email)
		}
		if leads[0].EventRef != evt.ID || leads[0].OriginalURL != evt.OriginalURL {
			t.Errorf("lead = %+v", leads[0])
		}
	})
}

func titles(events []*event.Event) string {
	out := make([]string, len(events))
	for i, evt := range events {
		out[i] = evt.Title
	}
	return fmt.Sprint(out)
}
