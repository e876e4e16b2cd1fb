// Package queue persists work items in SQLite and exposes the selection and
// mutation operations the pipeline needs.
//
// Each row tracks one video from ingestion through download and publication
// via the monotonic downloaded/posted flags. Selection prefers items that are
// already downloaded but not yet posted, so a run that failed after download
// is retried before new downloads begin. Source, caption strategy, and format
// preset are validated once at the store boundary; the rest of the codebase
// works with the closed enum types defined here.
//
// The database is working state for in-flight items, not an archive. Schema
// changes bump schemaVersion in schema.go; users clear the database to adopt
// the new schema.
package queue
