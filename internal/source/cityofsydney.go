package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/city-events/internal/event"
)

var backgroundImagePattern = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// CityOfSydney scrapes the City of Sydney "What's On" listing page
type CityOfSydney struct {
	name      string
	city      string
	url       string
	userAgent string
	client    *http.Client
}

// NewCityOfSydney creates a live adapter for a What's On listing page
func NewCityOfSydney(cfg Config, opts Options) *CityOfSydney {
	return &CityOfSydney{
		name:      cfg.Name,
		city:      cfg.City,
		url:       cfg.URL,
		userAgent: opts.userAgent(),
		client:    opts.httpClient(),
	}
}

func (s *CityOfSydney) Name() string { return s.name }
func (s *CityOfSydney) City() string { return s.city }

// Fetch downloads the listing page and parses its event tiles
func (s *CityOfSydney) Fetch(ctx context.Context, now time.Time) ([]*event.Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return s.parseEvents(resp.Body, now)
}

// parseEvents extracts drafts from the listing HTML. Relative links are
// resolved against the page URL.
func (s *CityOfSydney) parseEvents(r io.Reader, now time.Time) ([]*event.Draft, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parsing source url: %w", err)
	}

	drafts := make([]*event.Draft, 0)

	doc.Find(".event_tile").Each(func(i int, tile *goquery.Selection) {
		title := strings.TrimSpace(tile.Find(".event_tile-name-link").Text())

		originalURL := ""
		if href, ok := tile.Find(".event_tile-link").Attr("href"); ok && strings.TrimSpace(href) != "" {
			if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
				originalURL = base.ResolveReference(ref).String()
			}
		}

		description := strings.TrimSpace(tile.Find(".event_tile-description").Text())
		if description == "" {
			description = strings.TrimSpace(tile.Find(".event_tile-summary").Text())
		}

		var category []string
		if c := strings.TrimSpace(tile.Find(".event_tile-category-link").Text()); c != "" {
			category = []string{c}
		}

		imageURL := ""
		if style, ok := tile.Find(".image_background-image").Attr("style"); ok {
			if m := backgroundImagePattern.FindStringSubmatch(style); m != nil {
				imageURL = m[1]
			}
		}

		dateText := strings.TrimSpace(tile.Find(".event_tile-footer-item").First().Text())

		drafts = append(drafts, &event.Draft{
			Title:       title,
			OriginalURL: originalURL,
			Venue:       strings.TrimSpace(tile.Find(".event_card_location-content span").Text()),
			City:        s.city,
			Category:    category,
			Description: description,
			Summary:     description,
			ImageURL:    imageURL,
			Date:        dateText,
			EventDate:   event.NormalizeDate(dateText, now),
			SourceName:  s.name,
		})
	})

	return drafts, nil
}
