package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
)

const (
	UserAgent      = "city-events/1.0 (+https://github.com/pfrederiksen/city-events)"
	DefaultTimeout = 10 * time.Second
)

// Kind selects the adapter implementation for a source
type Kind string

const (
	KindCityOfSydney Kind = "cityofsydney"
	KindStatic       Kind = "static"
)

// ErrUnknownKind is returned for a source kind with no adapter
var ErrUnknownKind = errors.New("unknown source kind")

// Adapter fetches the current listings of one source
type Adapter interface {
	Name() string
	City() string
	Fetch(ctx context.Context, now time.Time) ([]*event.Draft, error)
}

// Config describes one source of one city
type Config struct {
	Name   string
	Kind   Kind
	URL    string
	City   string
	Events []event.Draft // fixed listing for static sources
}

// Options are shared by all live adapters
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return UserAgent
}

// New builds the adapter for a source config
func New(cfg Config, opts Options) (Adapter, error) {
	switch cfg.Kind {
	case KindCityOfSydney:
		return NewCityOfSydney(cfg, opts), nil
	case KindStatic:
		return NewStatic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (source %s)", ErrUnknownKind, cfg.Kind, cfg.Name)
	}
}

// Result is the outcome of fetching one source: drafts on success, the
// failure reason otherwise.
type Result struct {
	Source  string         `json:"source"`
	City    string         `json:"city"`
	Drafts  []*event.Draft `json:"-"`
	Count   int            `json:"drafts"`
	Dropped int            `json:"dropped,omitempty"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// OK reports whether the source was fetched successfully
func (r *Result) OK() bool {
	return r.Err == nil
}

// Collect fetches one adapter and validates its drafts. Drafts without a
// title or URL are dropped. Missing city and source names are filled from
// the adapter, and every draft is stamped with now.
func Collect(ctx context.Context, a Adapter, now time.Time) (res *Result) {
	res = &Result{Source: a.Name(), City: a.City()}

	defer func() {
		if r := recover(); r != nil {
			res.Drafts = nil
			res.Count = 0
			res.fail(fmt.Errorf("adapter panic: %v", r))
		}
	}()

	drafts, err := a.Fetch(ctx, now)
	if err != nil {
		res.fail(err)
		return res
	}

	for _, d := range drafts {
		if !d.Valid() {
			res.Dropped++
			continue
		}
		if d.City == "" {
			d.City = a.City()
		}
		if d.SourceName == "" {
			d.SourceName = a.Name()
		}
		d.ScrapedAt = now
		res.Drafts = append(res.Drafts, d)
	}
	res.Count = len(res.Drafts)

	return res
}

func (r *Result) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}
