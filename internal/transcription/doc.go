// Package transcription drives one speech-processing job through its
// registered pipeline steps against a capability provider.
//
// The orchestrator owns the step cursor for the duration of one run: before
// each step it checks for a stop request, persists a processing status at
// the step's start and end progress, and records wall-clock timing. Steps
// run strictly sequentially; provider calls are opaque blocking operations
// and cancellation is cooperative at step boundaries only.
//
// Diarization runs before transcription so a diarization failure can never
// block the transcript; its output, when present, supplies the
// speaker-labeled segment skeleton that transcription metadata is merged
// into.
package transcription
