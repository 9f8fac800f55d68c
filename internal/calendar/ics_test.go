package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

func TestGenerateICS(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	date := time.Date(2025, 2, 28, 0, 0, 0, 0, sydney)
	now := time.Date(2025, 1, 15, 3, 4, 5, 0, time.UTC)

	evt := &event.Event{
		ID:          "test-event-123",
		Title:       "Sydney Harbour Night Run",
		OriginalURL: "https://www.eventbrite.com.au/mock-run",
		Venue:       "Circular Quay",
		City:        "Sydney",
		Category:    []string{"Sports", "Outdoor"},
		Description: "A beautiful night run around the harbour.",
		Date:        "Fri 28 Feb",
		EventDate:   &date,
		SourceName:  "Eventbrite Sydney",
	}

	ics, err := GenerateICS(evt, now)
	if err != nil {
		t.Fatalf("GenerateICS() error = %v", err)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//City Events//city-events//EN",
		"BEGIN:VEVENT",
		"UID:test-event-123@city-events",
		"DTSTAMP:20250115T030405Z",
		"DTSTART;VALUE=DATE:20250228",
		"DTEND;VALUE=DATE:20250301",
		"SUMMARY:Sydney Harbour Night Run",
		"DESCRIPTION:Date: Fri 28 Feb\\n\\nA beautiful night run around the harbour.",
		"LOCATION:Circular Quay\\, Sydney", // Comma is escaped
		"CATEGORIES:Sports,Outdoor",
		"URL:https://www.eventbrite.com.au/mock-run",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	unfolded := strings.ReplaceAll(ics, "\r\n ", "")
	for _, field := range requiredFields {
		if !strings.Contains(unfolded, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS should end with END:VCALENDAR and \\r\\n")
	}
	for _, l := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(l) > maxLineOctets {
			t.Errorf("line longer than %d octets: %q", maxLineOctets, l)
		}
	}
}

func TestGenerateICS_NoDate(t *testing.T) {
	evt := &event.Event{ID: "x", Title: "Someday", OriginalURL: "https://example.com/x"}

	if _, err := GenerateICS(evt, time.Now()); !errors.Is(err, ErrNoDate) {
		t.Errorf("GenerateICS() error = %v, want ErrNoDate", err)
	}
}

func TestGenerateICS_MinimalEvent(t *testing.T) {
	date := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	evt := &event.Event{ID: "x", Title: "NYE", OriginalURL: "https://example.com/nye", EventDate: &date}

	ics, err := GenerateICS(evt, date)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ics, "DTEND;VALUE=DATE:20260101") {
		t.Error("end date should roll into the next year")
	}
	for _, absent := range []string{"DESCRIPTION:", "LOCATION:", "CATEGORIES:"} {
		if strings.Contains(ics, absent) {
			t.Errorf("empty field emitted: %s", absent)
		}
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no special characters", "Simple text", "Simple text"},
		{"comma", "Circular Quay, Sydney", "Circular Quay\\, Sydney"},
		{"semicolon", "Part 1; Part 2", "Part 1\\; Part 2"},
		{"backslash", "Path\\to\\file", "Path\\\\to\\\\file"},
		{"newline", "Line 1\nLine 2", "Line 1\\nLine 2"},
		{"crlf", "Line 1\r\nLine 2", "Line 1\\nLine 2"},
		{"multiple special characters", "Test, with; special\\chars\n", "Test\\, with\\; special\\\\chars\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeICS(tt.input); got != tt.want {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFoldLine(t *testing.T) {
	short := "SUMMARY:short"
	if got := foldLine(short); got != short {
		t.Errorf("short line changed: %q", got)
	}

	long := "DESCRIPTION:" + strings.Repeat("é", 100)
	folded := foldLine(long)
	for _, part := range strings.Split(folded, "\r\n") {
		if len(part) > maxLineOctets {
			t.Errorf("folded part has %d octets", len(part))
		}
	}
	if strings.ReplaceAll(folded, "\r\n ", "") != long {
		t.Error("unfolding should restore the original line")
	}
}
