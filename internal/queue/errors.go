package queue

import "errors"

// ErrNotFound indicates a mutation targeted an id with no matching row.
// Callers treat this as a logic bug rather than a transient condition.
var ErrNotFound = errors.New("queue item not found")
