package event

// Outcome describes what one draft did to the store during reconciliation
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeUpdated     Outcome = "updated"
	OutcomeRevived     Outcome = "revived"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomePinned      Outcome = "pinned" // imported, content refreshed, status kept
	OutcomeInactivated Outcome = "inactivated"
)

// FieldChange is a single watched field that differs between runs
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DetectChanges compares the watched fields of an event against a draft.
// Category, city and the normalized date are not watched.
func DetectChanges(existing *Event, d *Draft) []FieldChange {
	var changes []FieldChange

	watched := []struct {
		field    string
		old, new string
	}{
		{"title", existing.Title, d.Title},
		{"date", existing.Date, d.Date},
		{"venue", existing.Venue, d.Venue},
		{"description", existing.Description, d.Description},
		{"imageUrl", existing.ImageURL, d.ImageURL},
	}

	for _, w := range watched {
		if w.old != w.new {
			changes = append(changes, FieldChange{
				Field:    w.field,
				OldValue: w.old,
				NewValue: w.new,
			})
		}
	}

	return changes
}

// Transition returns the status an existing event moves to when it is seen
// again in a run.
//
//	imported             -> imported (never changed by scraping)
//	inactive             -> new      (revival, content change irrelevant)
//	content changed      -> updated
//	otherwise            -> unchanged
func Transition(prior Status, changed bool) Status {
	switch {
	case prior == StatusImported:
		return StatusImported
	case prior == StatusInactive:
		return StatusNew
	case changed:
		return StatusUpdated
	default:
		return prior
	}
}

// Merge refreshes an existing event from a draft seen in the current run and
// applies the lifecycle transition. The event is modified in place.
func Merge(existing *Event, d *Draft) (Outcome, []FieldChange) {
	changes := DetectChanges(existing, d)
	prior := existing.Status
	if prior == "" {
		prior = StatusNew
	}

	existing.refresh(d)
	existing.Status = Transition(prior, len(changes) > 0)

	switch {
	case prior == StatusInactive:
		return OutcomeRevived, changes
	case prior == StatusImported && len(changes) > 0:
		return OutcomePinned, changes
	case existing.Status == StatusUpdated && len(changes) > 0:
		return OutcomeUpdated, changes
	default:
		return OutcomeUnchanged, changes
	}
}
