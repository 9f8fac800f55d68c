package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const listingHTML = `
<html>
  <body>
    <div class="event_tile">
      <a class="event_tile-link" href="/events/sydney-festival-opening"></a>
      <div class="image_background-image" style="background-image: url('https://images.example.com/festival.jpg')"></div>
      <h3><a class="event_tile-name-link">Sydney Festival Opening Night</a></h3>
      <a class="event_tile-category-link"> Festivals </a>
      <div class="event_card_location-content"><span>Hyde Park</span></div>
      <p class="event_tile-description">Free outdoor concert &amp; fireworks.</p>
      <ul>
        <li class="event_tile-footer-item">Fri 20 Feb</li>
        <li class="event_tile-footer-item">7pm</li>
      </ul>
    </div>
    <div class="event_tile">
      <a class="event_tile-link" href="https://partner.example.com/markets"></a>
      <h3><a class="event_tile-name-link">Rocks Markets</a></h3>
      <div class="event_card_location-content"><span>The Rocks</span></div>
      <p class="event_tile-summary">Weekend markets.</p>
      <ul><li class="event_tile-footer-item">Today</li></ul>
    </div>
    <div class="event_tile">
      <h3><a class="event_tile-name-link">No link tile</a></h3>
    </div>
  </body>
</html>
`

func TestCityOfSydney_Fetch(t *testing.T) {
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		html       string
		statusCode int
		wantError  bool
		wantDrafts int
	}{
		{
			name:       "listing page",
			html:       listingHTML,
			statusCode: http.StatusOK,
			wantDrafts: 3,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusServiceUnavailable,
			wantError:  true,
		},
		{
			name:       "page without tiles",
			html:       `<html><body><p>No events</p></body></html>`,
			statusCode: http.StatusOK,
			wantDrafts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "city-events") {
					t.Errorf("User-Agent = %q, should contain 'city-events'", ua)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.html))
			}))
			defer server.Close()

			a := NewCityOfSydney(Config{Name: "What's On Sydney", City: "Sydney", URL: server.URL + "/whats-on-today"}, Options{})
			drafts, err := a.Fetch(context.Background(), now)

			if tt.wantError {
				if err == nil {
					t.Error("Fetch() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if len(drafts) != tt.wantDrafts {
				t.Errorf("Fetch() returned %d drafts, want %d", len(drafts), tt.wantDrafts)
			}
		})
	}
}

func TestCityOfSydney_ParseFields(t *testing.T) {
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	a := NewCityOfSydney(Config{Name: "What's On Sydney", City: "Sydney", URL: "https://whatson.example.gov.au/whats-on-today"}, Options{})

	drafts, err := a.parseEvents(strings.NewReader(listingHTML), now)
	if err != nil {
		t.Fatalf("parseEvents() error: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("parseEvents() returned %d drafts, want 3", len(drafts))
	}

	first := drafts[0]
	if first.Title != "Sydney Festival Opening Night" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.OriginalURL != "https://whatson.example.gov.au/events/sydney-festival-opening" {
		t.Errorf("OriginalURL = %q", first.OriginalURL)
	}
	if first.Venue != "Hyde Park" {
		t.Errorf("Venue = %q", first.Venue)
	}
	if len(first.Category) != 1 || first.Category[0] != "Festivals" {
		t.Errorf("Category = %v", first.Category)
	}
	if first.Description != "Free outdoor concert & fireworks." || first.Summary != first.Description {
		t.Errorf("Description = %q Summary = %q", first.Description, first.Summary)
	}
	if first.ImageURL != "https://images.example.com/festival.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}
	if first.Date != "Fri 20 Feb" {
		t.Errorf("Date = %q, want first footer item", first.Date)
	}
	if first.EventDate == nil || !first.EventDate.Equal(time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EventDate = %v", first.EventDate)
	}
	if first.City != "Sydney" || first.SourceName != "What's On Sydney" {
		t.Errorf("City = %q SourceName = %q", first.City, first.SourceName)
	}

	second := drafts[1]
	if second.OriginalURL != "https://partner.example.com/markets" {
		t.Errorf("absolute href should be kept, got %q", second.OriginalURL)
	}
	if second.Description != "Weekend markets." {
		t.Errorf("summary fallback not used: %q", second.Description)
	}
	if len(second.Category) != 0 {
		t.Errorf("Category = %v, want empty", second.Category)
	}
	if second.EventDate == nil || second.EventDate.Day() != 15 {
		t.Errorf("EventDate = %v, want today", second.EventDate)
	}

	if drafts[2].OriginalURL != "" {
		t.Errorf("tile without link should have empty URL, got %q", drafts[2].OriginalURL)
	}
}

func TestCityOfSydney_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	a := NewCityOfSydney(Config{Name: "slow", City: "Sydney", URL: server.URL}, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := a.Fetch(context.Background(), time.Now())
	if err == nil {
		t.Fatal("Fetch() expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Fetch() took %v, timeout not applied", elapsed)
	}
}
