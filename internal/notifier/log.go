package notifier

import (
	"context"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/logger"
)

// LogNotifier writes announcements through the logger without posting them
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log notifier. A nil logger uses the default.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the announcement that would be posted for each event
func (n *LogNotifier) Notify(_ context.Context, events []*event.Event) error {
	log := n.log
	if log == nil {
		log = logger.Default()
	}
	for i, evt := range events {
		text := formatAnnouncement(evt)
		log.Info("New event announcement", logger.Fields{
			"index":  i + 1,
			"total":  len(events),
			"id":     evt.ID,
			"url":    evt.OriginalURL,
			"text":   text,
			"length": announcementLength(text),
		})
	}
	return nil
}
