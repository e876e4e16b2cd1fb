// Package logging configures slog for the pipeline.
//
// New builds a logger from Options (level, format, output paths); the console
// handler prints human-oriented lines with color when the writer is a
// terminal, while the json format emits one object per record for log
// shippers. Attr helpers keep field keys consistent across packages; use
// NewComponentLogger to tag a subsystem and NewNop in tests that do not
// assert on log output.
package logging
