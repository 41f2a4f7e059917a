package transcription

import (
	"fmt"

	"scribe/internal/pipeline"
)

// Steps binds pipeline table entries to the orchestrator's four roles. The
// roles execute in the fixed order load, diarize, transcribe, save; the
// table decides only how progress is apportioned among them.
type Steps struct {
	Load       *pipeline.Step
	Diarize    *pipeline.Step
	Transcribe *pipeline.Step
	Save       *pipeline.Step
}

// Validate ensures every role has a bound step.
func (s Steps) Validate() error {
	for _, role := range []struct {
		name string
		step *pipeline.Step
	}{
		{"load", s.Load},
		{"diarize", s.Diarize},
		{"transcribe", s.Transcribe},
		{"save", s.Save},
	} {
		if role.step == nil {
			return fmt.Errorf("transcription: %s step not bound", role.name)
		}
	}
	return nil
}

// DefaultSteps registers the standard step table on the given registry and
// returns the role bindings. Steps are registered in execution order so the
// persisted overall progress is monotonic across a run.
func DefaultSteps(registry *pipeline.Registry) Steps {
	return Steps{
		Load:       registry.MustRegister("Load Models", "Loading transcription models", 0, 20),
		Diarize:    registry.MustRegister("Speaker Diarization", "Identifying speakers", 20, 50),
		Transcribe: registry.MustRegister("Transcribe Audio", "Converting speech to text", 50, 90),
		Save:       registry.MustRegister("Save Results", "Saving transcription results", 90, 100),
	}
}
