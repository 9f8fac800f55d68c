package notifier

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/city-events/internal/event"
)

const (
	maxAnnouncementLength = 280
	defaultPostDelay      = 2 * time.Second
)

// statusPoster is the part of the Twitter status API the notifier uses
type statusPoster interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts new events to Twitter
type TwitterNotifier struct {
	statuses statusPoster
	delay    time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses, delay: defaultPostDelay}, nil
}

// Notify posts one status per event, pausing between posts
func (n *TwitterNotifier) Notify(ctx context.Context, events []*event.Event) error {
	for i, evt := range events {
		if _, _, err := n.statuses.Update(formatAnnouncement(evt), nil); err != nil {
			return fmt.Errorf("failed to post announcement for event %s: %w", evt.ID, err)
		}

		if i < len(events)-1 && n.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}

	return nil
}

// formatAnnouncement renders an event as a status of at most 280 characters
func formatAnnouncement(evt *event.Event) string {
	var b strings.Builder

	b.WriteString("🎉 New in ")
	if evt.City != "" {
		b.WriteString(evt.City)
	} else {
		b.WriteString("town")
	}
	b.WriteString("!\n\n")
	b.WriteString(evt.Title)
	b.WriteString("\n")

	if evt.Date != "" {
		fmt.Fprintf(&b, "📅 %s\n", evt.Date)
	}
	if evt.Venue != "" {
		fmt.Fprintf(&b, "📍 %s\n", evt.Venue)
	}

	fmt.Fprintf(&b, "\n🔗 %s", evt.OriginalURL)

	if tag := hashtag(evt.City); tag != "" {
		fmt.Fprintf(&b, "\n\n#%sEvents", tag)
	}

	text := b.String()
	if announcementLength(text) > maxAnnouncementLength {
		runes := []rune(text)
		text = string(runes[:maxAnnouncementLength-3]) + "..."
	}
	return text
}

func announcementLength(s string) int {
	return utf8.RuneCountInString(s)
}

// hashtag strips everything but letters and digits: "North Sydney" -> "NorthSydney"
func hashtag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
