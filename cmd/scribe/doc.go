// Command scribe is the CLI for the scribe transcription daemon. It manages
// configuration, uploads audio, starts and stops jobs, and fetches
// transcripts over the daemon's HTTP API.
package main
