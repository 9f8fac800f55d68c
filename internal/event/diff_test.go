package event

import (
	"testing"
	"time"
)

func testDraft(url string) *Draft {
	return &Draft{
		Title:       "Sydney Harbour Night Run",
		OriginalURL: url,
		Venue:       "Circular Quay",
		City:        "Sydney",
		Category:    []string{"Sports"},
		Description: "A beautiful night run around the harbour.",
		Summary:     "A beautiful night run around the harbour.",
		ImageURL:    "https://images.example.com/run.jpg",
		Date:        "Fri 28 Feb",
		SourceName:  "Eventbrite Sydney",
		ScrapedAt:   time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		prior   Status
		changed bool
		want    Status
	}{
		{StatusNew, false, StatusNew},
		{StatusNew, true, StatusUpdated},
		{StatusUpdated, false, StatusUpdated},
		{StatusUpdated, true, StatusUpdated},
		{StatusInactive, false, StatusNew},
		{StatusInactive, true, StatusNew},
		{StatusImported, false, StatusImported},
		{StatusImported, true, StatusImported},
	}

	for _, tt := range tests {
		got := Transition(tt.prior, tt.changed)
		if got != tt.want {
			t.Errorf("Transition(%s, %v) = %s, want %s", tt.prior, tt.changed, got, tt.want)
		}
	}
}

func TestDetectChanges(t *testing.T) {
	base := NewEvent(testDraft("https://example.com/run"))

	t.Run("identical draft", func(t *testing.T) {
		if changes := DetectChanges(base, testDraft("https://example.com/run")); len(changes) != 0 {
			t.Errorf("expected no changes, got %+v", changes)
		}
	})

	t.Run("unwatched fields ignored", func(t *testing.T) {
		d := testDraft("https://example.com/run")
		d.Category = []string{"Running"}
		d.City = "Greater Sydney"
		d.Summary = "Different summary"
		d.ScrapedAt = d.ScrapedAt.Add(time.Hour)

		if changes := DetectChanges(base, d); len(changes) != 0 {
			t.Errorf("expected no changes, got %+v", changes)
		}
	})

	t.Run("each watched field", func(t *testing.T) {
		d := testDraft("https://example.com/run")
		d.Title = "Harbour Run"
		d.Date = "Sat 1 Mar"
		d.Venue = "Barangaroo"
		d.Description = "Moved."
		d.ImageURL = "https://images.example.com/other.jpg"

		changes := DetectChanges(base, d)
		if len(changes) != 5 {
			t.Fatalf("expected 5 changes, got %d", len(changes))
		}

		fields := map[string]FieldChange{}
		for _, c := range changes {
			fields[c.Field] = c
		}
		for _, f := range []string{"title", "date", "venue", "description", "imageUrl"} {
			if _, ok := fields[f]; !ok {
				t.Errorf("expected change for %s", f)
			}
		}
		if fields["venue"].OldValue != "Circular Quay" || fields["venue"].NewValue != "Barangaroo" {
			t.Errorf("venue change = %+v", fields["venue"])
		}
	})
}

func TestMerge(t *testing.T) {
	later := time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		prior       Status
		changeTitle bool
		wantStatus  Status
		wantOutcome Outcome
	}{
		{"new unchanged", StatusNew, false, StatusNew, OutcomeUnchanged},
		{"new changed", StatusNew, true, StatusUpdated, OutcomeUpdated},
		{"updated unchanged keeps updated", StatusUpdated, false, StatusUpdated, OutcomeUnchanged},
		{"inactive unchanged revives", StatusInactive, false, StatusNew, OutcomeRevived},
		{"inactive changed revives as new", StatusInactive, true, StatusNew, OutcomeRevived},
		{"imported unchanged", StatusImported, false, StatusImported, OutcomeUnchanged},
		{"imported changed is pinned", StatusImported, true, StatusImported, OutcomePinned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := NewEvent(testDraft("https://example.com/run"))
			existing.Status = tt.prior

			d := testDraft("https://example.com/run")
			d.ScrapedAt = later
			if tt.changeTitle {
				d.Title = "Renamed Run"
			}

			outcome, _ := Merge(existing, d)

			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", outcome, tt.wantOutcome)
			}
			if existing.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", existing.Status, tt.wantStatus)
			}
			if !existing.LastScrapedAt.Equal(later) {
				t.Errorf("LastScrapedAt = %v, want %v", existing.LastScrapedAt, later)
			}
			if existing.Title != d.Title {
				t.Errorf("Title = %q, want refreshed %q", existing.Title, d.Title)
			}
		})
	}
}

func TestMerge_KeepsImportStamps(t *testing.T) {
	existing := NewEvent(testDraft("https://example.com/run"))
	at := time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
	existing.MarkImported("admin-1", "featured", at)

	d := testDraft("https://example.com/run")
	d.Venue = "Barangaroo"
	Merge(existing, d)

	if existing.ImportedBy != "admin-1" || existing.ImportNotes != "featured" {
		t.Errorf("import stamps lost: by=%q notes=%q", existing.ImportedBy, existing.ImportNotes)
	}
	if existing.ImportedAt == nil || !existing.ImportedAt.Equal(at) {
		t.Errorf("ImportedAt = %v, want %v", existing.ImportedAt, at)
	}
	if existing.Venue != "Barangaroo" {
		t.Errorf("Venue = %q, want refreshed value", existing.Venue)
	}
}
