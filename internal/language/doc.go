// Package language normalizes the language codes reported by transcription
// providers. WhisperX accepts and emits ISO 639-1 codes; user-facing output
// wants display names. Both derive from BCP 47 tag parsing.
package language
