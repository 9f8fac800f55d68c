// Package source fetches event listings from the configured sources and
// normalizes them into drafts.
//
// Each source is an Adapter. Live adapters fetch and parse HTML with goquery;
// static adapters return a fixed listing for sources that cannot be fetched
// reliably. Collect wraps every adapter the same way, so a failing source
// yields a failed Result instead of aborting the run.
package source
