// Package pipeline declares the ordered set of named steps a transcription
// job performs and their progress-weight ranges.
//
// Steps are registered once, at initialization time, in the order the
// orchestrator will execute them; the registry is read-only afterwards.
// ProgressInfo converts an absolute progress value into per-step progress
// detail. The relative progress it computes is deliberately unclamped so a
// caller can report the pipeline's overall 0/100 bounds through any step;
// Clamped produces the [0,1] view persisted in status records.
package pipeline
