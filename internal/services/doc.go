// Package services defines the shared error taxonomy consumed by the job
// orchestrator, the capability providers, and the HTTP boundary.
//
// Errors are tagged with sentinel markers via Wrap so that callers can
// classify a failure (fatal transcription error, degraded diarization,
// caller precondition, corrupt persisted state) with errors.Is without
// inspecting message text. Message extracts the human-readable portion for
// persisted status records and API responses.
package services
