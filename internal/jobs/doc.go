// Package jobs is the boundary service in front of the transcription
// pipeline. It owns job admission (one live run per identifier), the
// background goroutine each run executes on, stop requests, status and
// result lookups, upload intake, and startup recovery.
package jobs
