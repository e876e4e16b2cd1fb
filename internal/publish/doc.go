// Package publish confirms rendered artifacts with the remote publishing
// API. The flow is a three-step state machine: create a media container
// referencing the artifact by public URL, wait for the remote side to report
// the container finished, then publish it. The wait starts with a fixed
// grace delay before the first status poll and is bounded by an attempt
// budget; exhausting it is a timeout, not an infinite loop.
package publish
