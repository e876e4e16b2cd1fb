// Package services defines the shared error taxonomy consumed by the
// pipeline stages and external integrations.
//
// Stage failures are tagged with one of the exported sentinel markers so the
// orchestrator can classify an error with errors.Is without inspecting
// messages. Configuration problems are never retried within a run; fetch,
// transcode, and publish failures abort the run and leave whatever progress
// the queue already recorded, so the next invocation resumes from there.
package services
