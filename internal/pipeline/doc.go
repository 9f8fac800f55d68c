// Package pipeline reconciles scraped listings with the event store.
//
// A run collects drafts from every adapter of every city in catalogue order,
// drops repeated URLs (the later draft wins), and merges each draft into the
// store on its own: a store failure for one record is reported and the rest
// carry on. After all drafts, every stored event whose URL was not seen and
// whose status is neither inactive nor imported is marked inactive.
//
// Status transitions per URL:
//
//	absent                      -> new
//	inactive, seen again        -> new (revived)
//	imported                    -> imported, content refreshed
//	watched field changed       -> updated
//	unchanged                   -> status kept, lastScrapedAt refreshed
//	not seen this run           -> inactive
//
// Runs are not serialized by default. With SerializeWrites each
// read-modify-write holds a per-URL lock and the inactive pass holds a
// run-level lock; the transitions are the same either way.
package pipeline
