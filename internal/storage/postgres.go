package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/filter"
)

// PostgresStore keeps events and leads in PostgreSQL
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects and migrates the schema
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&event.Event{}, &event.Lead{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) FindByURL(ctx context.Context, originalURL string) (*event.Event, error) {
	var evt event.Event
	if err := s.db.WithContext(ctx).Where("original_url = ?", originalURL).First(&evt).Error; err != nil {
		return nil, notFound(err, "event "+originalURL)
	}
	return &evt, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*event.Event, error) {
	var evt event.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&evt).Error; err != nil {
		return nil, notFound(err, "event "+id)
	}
	return &evt, nil
}

func (s *PostgresStore) Create(ctx context.Context, evt *event.Event) error {
	if evt.ID == "" {
		evt.ID = event.GenerateID(evt.OriginalURL)
	}
	if err := s.db.WithContext(ctx).Create(evt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", evt.OriginalURL, ErrDuplicateURL)
		}
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, evt *event.Event) error {
	res := s.db.WithContext(ctx).
		Model(&event.Event{}).
		Where("id = ?", evt.ID).
		Select("*").
		Updates(evt)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", evt.OriginalURL, ErrDuplicateURL)
		}
		return fmt.Errorf("saving event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("event %s: %w", evt.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f *filter.Filter) ([]*event.Event, error) {
	q := s.db.WithContext(ctx).Model(&event.Event{})

	if f != nil {
		if f.City != "" {
			q = q.Where("city ILIKE ?", likePattern(f.City))
		}
		if f.Search != "" {
			p := likePattern(f.Search)
			q = q.Where("title ILIKE ? OR venue ILIKE ? OR description ILIKE ?", p, p, p)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.HasDateRange() {
			q = q.Where("event_date IS NOT NULL")
		}
		if f.From != nil {
			q = q.Where("event_date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("event_date <= ?", *f.To)
		}
	}

	var events []*event.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	// Byte-wise date text order, same as JSONStore
	sortEvents(events)
	return events, nil
}

func (s *PostgresStore) MarkInactiveExcept(ctx context.Context, urls []string) (int, error) {
	q := s.db.WithContext(ctx).
		Model(&event.Event{}).
		Where("status NOT IN ?", []string{string(event.StatusInactive), string(event.StatusImported)})
	if len(urls) > 0 {
		q = q.Where("original_url NOT IN ?", urls)
	}

	res := q.Updates(map[string]any{
		"status":     event.StatusInactive,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return 0, fmt.Errorf("marking inactive: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *PostgresStore) Import(ctx context.Context, id, by, notes string, at time.Time) (*event.Event, error) {
	var evt event.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&evt).Error; err != nil {
			return notFound(err, "event "+id)
		}
		evt.MarkImported(by, notes, at)
		return tx.Save(&evt).Error
	})
	if err != nil {
		return nil, err
	}
	return &evt, nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *event.Lead) error {
	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("creating lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]*event.Lead, error) {
	var leads []*event.Lead
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return leads, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// likePattern wraps s for a substring ILIKE with wildcards escaped
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
