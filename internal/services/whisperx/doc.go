// Package whisperx implements the transcription provider on top of the
// WhisperX CLI run through uvx.
//
// This package handles:
//   - Audio normalization to mono 16kHz WAV via ffmpeg
//   - WhisperX transcription invocation
//   - WhisperX diarization invocation (pyannote, token-gated)
//   - Parsing segments, language, and speakers from result JSON
//
// Diarization degrades instead of failing: without a Hugging Face token the
// provider returns the input segments unchanged and never invokes pyannote.
package whisperx
