package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a persisted event
type Status string

const (
	StatusNew      Status = "new"
	StatusUpdated  Status = "updated"
	StatusInactive Status = "inactive"
	StatusImported Status = "imported"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusNew, StatusUpdated, StatusInactive, StatusImported}

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Draft is an unpersisted listing produced by one source in one run
type Draft struct {
	Title       string     `json:"title" yaml:"title"`
	OriginalURL string     `json:"originalUrl" yaml:"original_url"`
	Venue       string     `json:"venue,omitempty" yaml:"venue"`
	Address     string     `json:"address,omitempty" yaml:"address"`
	City        string     `json:"city,omitempty" yaml:"city"`
	Category    []string   `json:"category,omitempty" yaml:"category"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Summary     string     `json:"summary,omitempty" yaml:"summary"`
	ImageURL    string     `json:"imageUrl,omitempty" yaml:"image_url"`
	Date        string     `json:"date,omitempty" yaml:"date"`
	Time        string     `json:"time,omitempty" yaml:"time"`
	EventDate   *time.Time `json:"eventDate,omitempty" yaml:"-"`
	SourceName  string     `json:"sourceName,omitempty" yaml:"source_name"`
	ScrapedAt   time.Time  `json:"lastScrapedAt" yaml:"-"`
}

// Valid reports whether the draft carries the fields needed to track it
func (d *Draft) Valid() bool {
	return d != nil && strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.OriginalURL) != ""
}

// Clone returns a deep copy of the draft
func (d *Draft) Clone() *Draft {
	c := *d
	c.Category = cloneStrings(d.Category)
	c.EventDate = cloneTime(d.EventDate)
	return &c
}

// Event is a persisted listing, unique by OriginalURL
type Event struct {
	ID            string     `json:"_id" gorm:"primaryKey;size:36"`
	Title         string     `json:"title" gorm:"not null"`
	OriginalURL   string     `json:"originalUrl" gorm:"uniqueIndex;not null"`
	Venue         string     `json:"venue"`
	Address       string     `json:"address"`
	City          string     `json:"city" gorm:"index"`
	Category      []string   `json:"category" gorm:"serializer:json;type:text"`
	Description   string     `json:"description"`
	Summary       string     `json:"summary"`
	ImageURL      string     `json:"imageUrl"`
	Date          string     `json:"date" gorm:"index"`
	Time          string     `json:"time,omitempty"`
	EventDate     *time.Time `json:"eventDate" gorm:"index"`
	SourceName    string     `json:"sourceName"`
	LastScrapedAt time.Time  `json:"lastScrapedAt"`
	Status        Status     `json:"status" gorm:"type:varchar(16);index;not null;default:new"`
	ImportedAt    *time.Time `json:"importedAt,omitempty"`
	ImportedBy    string     `json:"importedBy,omitempty"`
	ImportNotes   string     `json:"importNotes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// GenerateID derives a deterministic event ID from the listing URL, so the
// same event keeps its ID across stores and rebuilds.
func GenerateID(originalURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(originalURL)).String()
}

// NewEvent creates an event with status new from a draft
func NewEvent(d *Draft) *Event {
	e := &Event{
		ID:     GenerateID(d.OriginalURL),
		Status: StatusNew,
	}
	e.refresh(d)
	return e
}

// refresh overwrites the content fields with the draft's values
func (e *Event) refresh(d *Draft) {
	e.Title = d.Title
	e.OriginalURL = d.OriginalURL
	e.Venue = d.Venue
	e.Address = d.Address
	e.City = d.City
	e.Category = cloneStrings(d.Category)
	e.Description = d.Description
	e.Summary = d.Summary
	e.ImageURL = d.ImageURL
	e.Date = d.Date
	e.Time = d.Time
	e.EventDate = cloneTime(d.EventDate)
	e.SourceName = d.SourceName
	e.LastScrapedAt = d.ScrapedAt
}

// MarkImported moves the event into the imported state and stamps it.
// Re-importing overwrites the previous stamps.
func (e *Event) MarkImported(by, notes string, at time.Time) {
	e.Status = StatusImported
	e.ImportedAt = &at
	e.ImportedBy = by
	e.ImportNotes = notes
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	c := *e
	c.Category = cloneStrings(e.Category)
	c.EventDate = cloneTime(e.EventDate)
	c.ImportedAt = cloneTime(e.ImportedAt)
	return &c
}

// Lead is an email captured against an event. Title and URL are copied so
// the lead stays meaningful if the event goes away.
type Lead struct {
	ID          string    `json:"_id" gorm:"primaryKey;size:36"`
	Email       string    `json:"email" gorm:"not null"`
	Consent     bool      `json:"consent"`
	EventRef    string    `json:"eventRef" gorm:"index;size:36"`
	EventTitle  string    `json:"eventTitle"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

// NewLead creates a lead for an event
func NewLead(email string, consent bool, evt *Event, at time.Time) *Lead {
	return &Lead{
		ID:          uuid.NewString(),
		Email:       strings.TrimSpace(email),
		Consent:     consent,
		EventRef:    evt.ID,
		EventTitle:  evt.Title,
		OriginalURL: evt.OriginalURL,
		CreatedAt:   at,
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
