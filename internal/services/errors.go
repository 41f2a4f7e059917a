package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelLoad marks failures while preparing provider models.
	ErrModelLoad = errors.New("model load error")
	// ErrTranscription marks fatal speech-to-text failures; these abort the job.
	ErrTranscription = errors.New("transcription error")
	// ErrDiarization marks speaker-separation failures; these degrade, never abort.
	ErrDiarization = errors.New("diarization error")
	// ErrValidation marks caller preconditions that were not met.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks operations rejected because of the job's current state.
	ErrConflict = errors.New("conflict")
	// ErrConfiguration marks configuration problems detected at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups for identifiers that have no artifacts.
	ErrNotFound = errors.New("not found")
	// ErrCorruptStatus marks persisted status records that failed to decode.
	ErrCorruptStatus = errors.New("corrupt status record")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Message returns the human-readable portion of a wrapped error, with the
// sentinel marker prefix stripped. Used for persisted status records and API
// payloads where the marker text is noise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{
		ErrModelLoad,
		ErrTranscription,
		ErrDiarization,
		ErrValidation,
		ErrConflict,
		ErrConfiguration,
		ErrNotFound,
		ErrCorruptStatus,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
