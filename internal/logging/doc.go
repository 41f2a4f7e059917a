// Package logging builds the shared slog loggers used across scribe.
//
// Loggers are constructed once at process start from configuration and passed
// explicitly into components. Job and step identifiers travel on the context
// so that every component logging inside a job run emits the same
// standardized fields without re-plumbing attributes by hand.
package logging
