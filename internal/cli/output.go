package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// EventList is the result of the events command
type EventList struct {
	Filter string         `json:"filter"`
	Events []*event.Event `json:"events"`
}

// WriteReport writes a reconciliation report in the specified format
func WriteReport(w io.Writer, report *pipeline.Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteEvents writes an event listing in the specified format
func WriteEvents(w io.Writer, list *EventList, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if list.Events == nil {
			list.Events = []*event.Event{}
		}
		return writeJSON(w, list)
	case FormatText:
		return writeEventsText(w, list, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeReportText(w io.Writer, report *pipeline.Report, verbose bool) error {
	fmt.Fprintf(w, "Scrape finished in %s\n", report.Duration().Round(time.Millisecond))
	fmt.Fprintln(w, report.Summary())

	for _, res := range report.Sources {
		if res.OK() {
			if verbose {
				fmt.Fprintf(w, "  OK   %s / %s: %d drafts\n", res.City, res.Source, res.Count)
			}
			continue
		}
		fmt.Fprintf(w, "  FAIL %s / %s: %s\n", res.City, res.Source, res.Error)
	}

	for _, f := range report.Failures {
		fmt.Fprintf(w, "  FAIL %s %s: %s\n", f.Stage, f.OriginalURL, f.Error)
	}

	if len(report.CreatedEvents) > 0 {
		fmt.Fprintf(w, "\nNew events (%d):\n", len(report.CreatedEvents))
		for _, evt := range report.CreatedEvents {
			fmt.Fprintf(w, "  NEW (%s): %s\n", evt.City, evt.Title)
			if verbose {
				writeEventDetails(w, evt, "       ")
			}
		}
	}

	return nil
}

func writeEventsText(w io.Writer, list *EventList, verbose bool) error {
	if len(list.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	if verbose {
		fmt.Fprintf(w, "Filter: %s\n\n", list.Filter)
	}

	for _, evt := range list.Events {
		date := evt.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(w, "[%s] %s: %s (%s)\n", evt.Status, evt.City, evt.Title, date)
		if verbose {
			writeEventDetails(w, evt, "     ")
		}
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", len(list.Events))

	return nil
}

func writeEventDetails(w io.Writer, evt *event.Event, indent string) {
	fmt.Fprintf(w, "%sID: %s\n", indent, evt.ID)
	if evt.Venue != "" {
		fmt.Fprintf(w, "%sVenue: %s\n", indent, evt.Venue)
	}
	if evt.EventDate != nil {
		fmt.Fprintf(w, "%sDate: %s\n", indent, evt.EventDate.Format("Mon Jan 2, 2006"))
	}
	fmt.Fprintf(w, "%sURL: %s\n", indent, evt.OriginalURL)
}
