// Package status persists the crash-observable status record of each
// transcription job as one JSON file per job identifier.
//
// Writes go through a temp file plus rename so a reader never observes a
// half-written record. Reads never fail on malformed content; a record that
// cannot be decoded surfaces as the distinguished StateCorrupt so the
// recovery scanner can clean it up. The status record is the single piece of
// state mutated by more than one actor (the orchestrator writes progress, a
// stop request writes StateStopped, pollers read); semantics are
// last-writer-wins.
package status
