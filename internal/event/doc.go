// Package event provides the event records tracked by the scraper and the
// rules that move them through their lifecycle.
//
// A Draft is what a source adapter produces during one run. An Event is the
// persisted record, identified by its original listing URL. Merge applies a
// fresh draft to an existing event and decides its new status; NormalizeDate
// turns free-text listing dates into calendar dates for sorting and filtering.
package event
