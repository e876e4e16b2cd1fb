// Package pipeline drives one queue item end to end: select, fetch, mark
// downloaded, transcode, resolve caption, publish, mark posted, clean up.
// Stages run strictly in sequence and fail fast; partial progress committed
// to the store stays committed, so the next run resumes from wherever this
// one stopped. A run holds a file lock for its account so two runs never
// race on the same store.
package pipeline
