// Package storage persists events and leads.
//
// Two stores implement Store:
//   - JSONStore keeps everything in one JSON document on disk (the default,
//     ~/.city-events/events.json) or purely in memory for tests.
//   - PostgresStore keeps events and leads in PostgreSQL through gorm, with
//     a unique index on original_url.
//
// Both return ErrNotFound for unknown ids and URLs, hand out copies so
// callers never share records with the store, and list events sorted by
// their display date text.
package storage
