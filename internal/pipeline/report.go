package pipeline

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/city-events/internal/event"
	"github.com/pfrederiksen/city-events/internal/source"
)

// Failure stages
const (
	StageLookup     = "lookup"
	StageCreate     = "create"
	StageSave       = "save"
	StageInactivate = "inactivate"
)

// Failure is one record or pass that could not be persisted
type Failure struct {
	OriginalURL string `json:"originalUrl,omitempty"`
	Stage       string `json:"stage"`
	Error       string `json:"error"`
}

// Report is the operator summary of one run
type Report struct {
	StartedAt   time.Time        `json:"startedAt"`
	FinishedAt  time.Time        `json:"finishedAt"`
	Created     int              `json:"created"`
	Updated     int              `json:"updated"`
	Revived     int              `json:"revived"`
	Unchanged   int              `json:"unchanged"`
	Pinned      int              `json:"pinned"`
	Inactivated int              `json:"inactivated"`
	Duplicates  int              `json:"duplicates"`
	Sources     []*source.Result `json:"sources"`
	Failures    []Failure        `json:"failures"`

	// CreatedEvents are the events first seen in this run
	CreatedEvents []*event.Event `json:"-"`
}

func newReport(startedAt time.Time) *Report {
	return &Report{
		StartedAt: startedAt,
		Sources:   []*source.Result{},
		Failures:  []Failure{},
	}
}

func (r *Report) count(o event.Outcome) {
	switch o {
	case event.OutcomeCreated:
		r.Created++
	case event.OutcomeUpdated:
		r.Updated++
	case event.OutcomeRevived:
		r.Revived++
	case event.OutcomePinned:
		r.Pinned++
	default:
		r.Unchanged++
	}
}

func (r *Report) fail(url, stage string, err error) {
	r.Failures = append(r.Failures, Failure{OriginalURL: url, Stage: stage, Error: err.Error()})
}

// Changes returns the number of status changes made by the run
func (r *Report) Changes() int {
	return r.Created + r.Updated + r.Revived + r.Inactivated
}

// FailedSources returns the sources that produced no drafts due to an error
func (r *Report) FailedSources() []*source.Result {
	var failed []*source.Result
	for _, res := range r.Sources {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a one-line description for logs and the CLI
func (r *Report) Summary() string {
	return fmt.Sprintf("%d created, %d updated, %d revived, %d unchanged, %d pinned, %d inactivated (%d sources, %d failed, %d record failures)",
		r.Created, r.Updated, r.Revived, r.Unchanged, r.Pinned, r.Inactivated,
		len(r.Sources), len(r.FailedSources()), len(r.Failures))
}
