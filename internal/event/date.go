package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayMonthPattern = regexp.MustCompile(`(\d+)\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	monthAbbrevs    = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
)

// Midnight returns the start of t's day in t's location
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeDate converts listing date text into a calendar date at midnight
// in now's location. Returns nil when the text is not understood.
//
// Recognised, in order: "today", "tomorrow" (anywhere in the text,
// case-insensitive) and "<day> <mon>" such as "Fri 20 Feb". A day/month that
// falls before today is taken to mean next year.
func NormalizeDate(text string, now time.Time) *time.Time {
	s := strings.ToLower(text)
	today := Midnight(now)

	if strings.Contains(s, "today") {
		return &today
	}
	if strings.Contains(s, "tomorrow") {
		t := today.AddDate(0, 0, 1)
		return &t
	}

	match := dayMonthPattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	day, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	month := time.January
	for i, abbrev := range monthAbbrevs {
		if abbrev == match[2] {
			month = time.Month(i + 1)
			break
		}
	}

	d := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return &d
}
