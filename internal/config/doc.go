// Package config loads, normalizes, and validates scribe's TOML
// configuration.
//
// Configuration sections by subsystem:
//   - Paths: data directories and the API bind address
//   - WhisperX: transcription model, device, and diarization settings
//   - Notifications: ntfy push notification settings
//   - Workflow: recovery report retention and upload limits
//   - Logging: log format and level
//
// Load resolves the config file (explicit path, then the default user
// location), decodes it over the repository defaults, expands ~ in paths,
// and validates the result. The returned value is constructed once at
// startup and passed by reference; nothing in this package mutates global
// state.
package config
