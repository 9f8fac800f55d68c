package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

// ErrNoDate is returned for events without a normalized date
var ErrNoDate = errors.New("event has no normalized date")

const maxLineOctets = 75

// GenerateICS generates an iCalendar (.ics) file for an event as an all-day
// entry on its normalized date. now is used for DTSTAMP.
func GenerateICS(evt *event.Event, now time.Time) (string, error) {
	if evt.EventDate == nil {
		return "", ErrNoDate
	}

	var ics strings.Builder
	line := func(s string) {
		ics.WriteString(foldLine(s))
		ics.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//City Events//city-events//EN")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("BEGIN:VEVENT")

	line(fmt.Sprintf("UID:%s@city-events", evt.ID))
	line(fmt.Sprintf("DTSTAMP:%s", formatICSTime(now)))

	// All-day: the calendar date in the zone it was normalized in
	start := *evt.EventDate
	end := start.AddDate(0, 0, 1)
	line(fmt.Sprintf("DTSTART;VALUE=DATE:%s", formatICSDate(start)))
	line(fmt.Sprintf("DTEND;VALUE=DATE:%s", formatICSDate(end)))

	line(fmt.Sprintf("SUMMARY:%s", escapeICS(evt.Title)))

	var description []string
	if evt.Date != "" {
		description = append(description, "Date: "+evt.Date)
	}
	if evt.Description != "" {
		description = append(description, evt.Description)
	}
	if evt.SourceName != "" {
		description = append(description, "Listed by "+evt.SourceName)
	}
	if len(description) > 0 {
		line(fmt.Sprintf("DESCRIPTION:%s", escapeICS(strings.Join(description, "\n\n"))))
	}

	if location := formatLocation(evt); location != "" {
		line(fmt.Sprintf("LOCATION:%s", escapeICS(location)))
	}

	if len(evt.Category) > 0 {
		escaped := make([]string, len(evt.Category))
		for i, c := range evt.Category {
			escaped[i] = escapeICS(c)
		}
		line(fmt.Sprintf("CATEGORIES:%s", strings.Join(escaped, ",")))
	}

	line(fmt.Sprintf("URL:%s", evt.OriginalURL))
	line("STATUS:CONFIRMED")
	line("SEQUENCE:0")
	line("TRANSP:TRANSPARENT")

	line("END:VEVENT")
	line("END:VCALENDAR")

	return ics.String(), nil
}

func formatLocation(evt *event.Event) string {
	var parts []string
	for _, p := range []string{evt.Venue, evt.Address, evt.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatICSDate formats the calendar date of t in its own location
func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// foldLine splits content lines longer than 75 octets, continuing with a
// leading space. Multi-byte characters are never split.
func foldLine(s string) string {
	if len(s) <= maxLineOctets {
		return s
	}

	var b strings.Builder
	limit := maxLineOctets
	width := 0
	for _, r := range s {
		n := len(string(r))
		if width+n > limit {
			b.WriteString("\r\n ")
			width = 0
			limit = maxLineOctets - 1
		}
		b.WriteRune(r)
		width += n
	}
	return b.String()
}
