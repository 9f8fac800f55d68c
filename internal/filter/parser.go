package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

// ErrInvalidQuery is wrapped by every Parse error
var ErrInvalidQuery = errors.New("invalid query")

const dayLayout = "2006-01-02"

// Parse builds a filter from query parameters: city, search, status,
// startDate and endDate. Dates are RFC3339 or YYYY-MM-DD; a plain day is
// taken in loc, and an endDate day covers the whole day.
func Parse(values url.Values, loc *time.Location) (*Filter, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := &Filter{
		City:   strings.TrimSpace(values.Get("city")),
		Search: strings.TrimSpace(values.Get("search")),
	}

	if s := strings.TrimSpace(values.Get("status")); s != "" {
		status, err := event.ParseStatus(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		f.Status = status
	}

	if s := strings.TrimSpace(values.Get("startDate")); s != "" {
		from, err := ParseDate(s, loc, false)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate: %v", ErrInvalidQuery, err)
		}
		f.From = &from
	}

	if s := strings.TrimSpace(values.Get("endDate")); s != "" {
		to, err := ParseDate(s, loc, true)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate: %v", ErrInvalidQuery, err)
		}
		f.To = &to
	}

	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidQuery)
	}

	return f, nil
}

// ParseDate parses an RFC3339 timestamp or a YYYY-MM-DD day. With endOfDay
// a plain day resolves to its last instant so the bound stays inclusive.
func ParseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	day, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or RFC3339)", s)
	}

	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
