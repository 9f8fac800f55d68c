package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/filter"
)

// document is the on-disk layout of a JSONStore
type document struct {
	UpdatedAt string         `json:"updated_at"`
	Events    []*event.Event `json:"events"`
	Leads     []*event.Lead  `json:"leads"`
}

// JSONStore keeps events and leads in a single JSON file
type JSONStore struct {
	mu     sync.RWMutex
	path   string // empty for memory-only stores
	events map[string]*event.Event
	byURL  map[string]string
	leads  []*event.Lead
	now    func() time.Time
}

// NewJSONStore opens the store at path, creating its directory. A missing
// file starts an empty store.
func NewJSONStore(path string) (*JSONStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := newJSONStore(path)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStore creates a store that is never written to disk
func NewMemoryStore() *JSONStore {
	return newJSONStore("")
}

func newJSONStore(path string) *JSONStore {
	return &JSONStore{
		path:   path,
		events: make(map[string]*event.Event),
		byURL:  make(map[string]string),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the file backing the store
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing store: %w", err)
	}

	for _, evt := range doc.Events {
		if evt == nil || evt.ID == "" {
			continue
		}
		s.events[evt.ID] = evt
		s.byURL[evt.OriginalURL] = evt.ID
	}
	for _, lead := range doc.Leads {
		if lead != nil {
			s.leads = append(s.leads, lead)
		}
	}
	return nil
}

// persist writes the whole document. Callers hold the write lock.
func (s *JSONStore) persist() error {
	if s.path == "" {
		return nil
	}

	doc := document{
		UpdatedAt: s.now().Format(time.RFC3339),
		Events:    make([]*event.Event, 0, len(s.events)),
		Leads:     s.leads,
	}
	for _, evt := range s.events {
		doc.Events = append(doc.Events, evt)
	}
	sortEvents(doc.Events)
	if doc.Leads == nil {
		doc.Leads = []*event.Lead{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}

func (s *JSONStore) FindByURL(_ context.Context, originalURL string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byURL[originalURL]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", originalURL, ErrNotFound)
	}
	return s.events[id].Clone(), nil
}

func (s *JSONStore) Get(_ context.Context, id string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evt, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return evt.Clone(), nil
}

// Create stores a new event. A missing id is derived from the URL and the
// timestamps are stamped.
func (s *JSONStore) Create(_ context.Context, evt *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[evt.OriginalURL]; exists {
		return fmt.Errorf("%s: %w", evt.OriginalURL, ErrDuplicateURL)
	}
	if evt.ID == "" {
		evt.ID = event.GenerateID(evt.OriginalURL)
	}
	if _, exists := s.events[evt.ID]; exists {
		return fmt.Errorf("%s: %w", evt.OriginalURL, ErrDuplicateURL)
	}

	now := s.now()
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = now
	}
	evt.UpdatedAt = now

	s.events[evt.ID] = evt.Clone()
	s.byURL[evt.OriginalURL] = evt.ID

	if err := s.persist(); err != nil {
		delete(s.events, evt.ID)
		delete(s.byURL, evt.OriginalURL)
		return err
	}
	return nil
}

// Save replaces an existing event
func (s *JSONStore) Save(_ context.Context, evt *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.events[evt.ID]
	if !ok {
		return fmt.Errorf("event %s: %w", evt.ID, ErrNotFound)
	}
	if id, taken := s.byURL[evt.OriginalURL]; taken && id != evt.ID {
		return fmt.Errorf("%s: %w", evt.OriginalURL, ErrDuplicateURL)
	}

	evt.UpdatedAt = s.now()
	s.events[evt.ID] = evt.Clone()
	if prev.OriginalURL != evt.OriginalURL {
		delete(s.byURL, prev.OriginalURL)
		s.byURL[evt.OriginalURL] = evt.ID
	}

	if err := s.persist(); err != nil {
		s.events[evt.ID] = prev
		delete(s.byURL, evt.OriginalURL)
		s.byURL[prev.OriginalURL] = prev.ID
		return err
	}
	return nil
}

func (s *JSONStore) List(_ context.Context, f *filter.Filter) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*event.Event, 0, len(s.events))
	for _, evt := range s.events {
		if f == nil || f.Matches(evt) {
			events = append(events, evt.Clone())
		}
	}
	sortEvents(events)
	return events, nil
}

func (s *JSONStore) MarkInactiveExcept(_ context.Context, urls []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		seen[u] = struct{}{}
	}

	now := s.now()
	prior := make(map[string]*event.Event)
	for id, evt := range s.events {
		if _, ok := seen[evt.OriginalURL]; ok || !inactivatable(evt.Status) {
			continue
		}
		prior[id] = evt.Clone()
		evt.Status = event.StatusInactive
		evt.UpdatedAt = now
	}

	if len(prior) == 0 {
		return 0, nil
	}
	if err := s.persist(); err != nil {
		for id, evt := range prior {
			s.events[id] = evt
		}
		return 0, err
	}
	return len(prior), nil
}

func (s *JSONStore) Import(_ context.Context, id, by, notes string, at time.Time) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}

	evt := prev.Clone()
	evt.MarkImported(by, notes, at)
	evt.UpdatedAt = s.now()
	s.events[id] = evt

	if err := s.persist(); err != nil {
		s.events[id] = prev
		return nil, err
	}
	return evt.Clone(), nil
}

func (s *JSONStore) CreateLead(_ context.Context, lead *event.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = s.now()
	}

	stored := *lead
	s.leads = append(s.leads, &stored)

	if err := s.persist(); err != nil {
		s.leads = s.leads[:len(s.leads)-1]
		return err
	}
	return nil
}

func (s *JSONStore) ListLeads(_ context.Context) ([]*event.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]*event.Lead, len(s.leads))
	for i, lead := range s.leads {
		c := *lead
		leads[i] = &c
	}
	sortLeads(leads)
	return leads, nil
}

func (s *JSONStore) Close() error {
	return nil
}
