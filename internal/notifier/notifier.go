package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/logger"
)

// Notifier defines the interface for announcing new events
type Notifier interface {
	// Notify announces the given events
	Notify(ctx context.Context, events []*event.Event) error
}

// Nop discards announcements
type Nop struct{}

func (Nop) Notify(context.Context, []*event.Event) error { return nil }

// New creates the notifier for a configured kind: none, log or twitter.
// log is used by the log notifier; nil uses the default logger.
func New(kind string, log *logger.Logger) (Notifier, error) {
	switch kind {
	case "", "none":
		return Nop{}, nil
	case "log":
		return NewLogNotifier(log), nil
	case "twitter":
		return NewTwitterNotifier()
	default:
		return nil, fmt.Errorf("unknown notifier %q", kind)
	}
}
