package transcription

import "context"

// Segment is one time-bounded span of recognized speech.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Transcription is the speech-to-text output for one audio file.
type Transcription struct {
	Segments []Segment
	Language string
	Duration float64
}

// Diarization is the speaker-separation output for one audio file.
type Diarization struct {
	Segments []Segment
	Speakers []string
}

// Provider is the capability interface the orchestrator drives. It is
// supplied by the caller and never inspected beyond these three operations.
//
// PerformDiarization is best-effort: implementations missing a prerequisite
// (token, model) should return the input transcription's segments unchanged
// rather than fail; the orchestrator additionally treats any returned error
// as a degradation, never a job failure.
type Provider interface {
	LoadModels(ctx context.Context) error
	TranscribeAudio(ctx context.Context, audioPath string) (Transcription, error)
	PerformDiarization(ctx context.Context, audioPath string, tr Transcription) (Diarization, error)
}

// ModelNamer is optionally implemented by providers that can report which
// model they run; the name lands in result metadata.
type ModelNamer interface {
	ModelName() string
}
