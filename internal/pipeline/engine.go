package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/logger"
	"github.com/pfrederiksen/city-events/internal/metrics"
	"github.com/pfrederiksen/city-events/internal/notifier"
	"github.com/pfrederiksen/city-events/internal/source"
	"github.com/pfrederiksen/city-events/internal/storage"
)

// Options configures an Engine. Zero values are usable.
type Options struct {
	SerializeWrites bool
	Notifier        notifier.Notifier
	Metrics         *metrics.Recorder
	Logger          *logger.Logger
}

// Engine runs reconciliation against a store
type Engine struct {
	store storage.Store
	opts  Options
	urls  stripedLock
	runMu sync.Mutex
}

// New creates an engine for a store
func New(store storage.Store, opts Options) *Engine {
	if opts.Notifier == nil {
		opts.Notifier = notifier.Nop{}
	}
	return &Engine{store: store, opts: opts}
}

func (e *Engine) log() *logger.Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}
	return logger.Default()
}

// Run scrapes every source in the catalogue and reconciles the drafts with
// the store. now is the reference time for date normalization and stamps.
// Run never fails as a whole; source and record failures are in the report.
func (e *Engine) Run(ctx context.Context, catalog source.Catalog, now time.Time) *Report {
	start := time.Now()
	report := newReport(now)
	log := e.log()

	drafts := e.collect(ctx, catalog, now, report)

	seen := make([]string, 0, len(drafts))
	for _, d := range drafts {
		seen = append(seen, d.OriginalURL)

		outcome, evt, stage, err := e.reconcile(ctx, d)
		if err != nil {
			report.fail(d.OriginalURL, stage, err)
			log.Error("Reconciling event failed", logger.Fields{
				"url":   d.OriginalURL,
				"stage": stage,
			}, err)
			continue
		}

		report.count(outcome)
		if outcome == event.OutcomeCreated {
			report.CreatedEvents = append(report.CreatedEvents, evt)
		}
		log.Debug("Event reconciled", logger.Fields{
			"url":     d.OriginalURL,
			"outcome": string(outcome),
			"status":  string(evt.Status),
		})
	}

	n, err := e.markInactive(ctx, seen)
	if err != nil {
		report.fail("", StageInactivate, err)
		log.Error("Marking unseen events inactive failed", nil, err)
	}
	report.Inactivated = n

	if len(report.CreatedEvents) > 0 {
		if err := e.opts.Notifier.Notify(ctx, report.CreatedEvents); err != nil {
			log.Warn("Announcing new events failed", logger.Fields{
				"events": len(report.CreatedEvents),
				"error":  err.Error(),
			})
		}
	}

	elapsed := time.Since(start)
	report.FinishedAt = report.StartedAt.Add(elapsed)
	e.record(report, elapsed)

	log.Info("Reconciliation complete", logger.Fields{
		"created":     report.Created,
		"updated":     report.Updated,
		"revived":     report.Revived,
		"unchanged":   report.Unchanged,
		"pinned":      report.Pinned,
		"inactivated": report.Inactivated,
		"failures":    len(report.Failures),
		"duration_ms": elapsed.Milliseconds(),
	})

	return report
}

// collect fetches every adapter in order and returns the run's drafts with
// repeated URLs removed. A repeated URL keeps its first position but takes
// the later draft's content.
func (e *Engine) collect(ctx context.Context, catalog source.Catalog, now time.Time, report *Report) []*event.Draft {
	log := e.log()
	var drafts []*event.Draft
	index := make(map[string]int)

	for _, city := range catalog.Cities() {
		for _, a := range city.Adapters {
			res := source.Collect(ctx, a, now)
			report.Sources = append(report.Sources, res)
			e.opts.Metrics.ObserveFetch(res.Source, res.OK())

			if !res.OK() {
				log.Warn("Source failed", logger.Fields{
					"source": res.Source,
					"city":   city.Name,
					"error":  res.Error,
				})
				continue
			}
			log.Info("Source fetched", logger.Fields{
				"source":  res.Source,
				"city":    city.Name,
				"drafts":  res.Count,
				"dropped": res.Dropped,
			})

			for _, d := range res.Drafts {
				if i, dup := index[d.OriginalURL]; dup {
					drafts[i] = d
					report.Duplicates++
					continue
				}
				index[d.OriginalURL] = len(drafts)
				drafts = append(drafts, d)
			}
		}
	}

	return drafts
}

// reconcile merges one draft into the store
func (e *Engine) reconcile(ctx context.Context, d *event.Draft) (event.Outcome, *event.Event, string, error) {
	if e.opts.SerializeWrites {
		unlock := e.urls.lock(d.OriginalURL)
		defer unlock()
	}

	existing, err := e.store.FindByURL(ctx, d.OriginalURL)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		evt := event.NewEvent(d)
		err := e.store.Create(ctx, evt)
		if err == nil {
			return event.OutcomeCreated, evt, "", nil
		}
		if !errors.Is(err, storage.ErrDuplicateURL) {
			return "", nil, StageCreate, err
		}
		// Created concurrently by another run; merge into that record
		existing, err = e.store.FindByURL(ctx, d.OriginalURL)
		if err != nil {
			return "", nil, StageLookup, err
		}
	case err != nil:
		return "", nil, StageLookup, err
	}

	outcome, _ := event.Merge(existing, d)
	if err := e.store.Save(ctx, existing); err != nil {
		return "", nil, StageSave, fmt.Errorf("saving %s: %w", existing.ID, err)
	}
	return outcome, existing, "", nil
}

func (e *Engine) markInactive(ctx context.Context, seen []string) (int, error) {
	if e.opts.SerializeWrites {
		e.runMu.Lock()
		defer e.runMu.Unlock()
	}
	return e.store.MarkInactiveExcept(ctx, seen)
}

func (e *Engine) record(report *Report, elapsed time.Duration) {
	m := e.opts.Metrics
	m.AddOutcome(string(event.OutcomeCreated), report.Created)
	m.AddOutcome(string(event.OutcomeUpdated), report.Updated)
	m.AddOutcome(string(event.OutcomeRevived), report.Revived)
	m.AddOutcome(string(event.OutcomeUnchanged), report.Unchanged)
	m.AddOutcome(string(event.OutcomePinned), report.Pinned)
	m.AddOutcome(string(event.OutcomeInactivated), report.Inactivated)
	m.ObserveRun(elapsed)
}
