package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := Wrap(ErrTranscription, "whisperx", "transcribe", "inference failed", cause)

	if !errors.Is(err, ErrTranscription) {
		t.Fatal("expected ErrTranscription marker")
	}
	if errors.Is(err, ErrDiarization) {
		t.Fatal("unexpected ErrDiarization marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive")
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := Wrap(nil, "jobs", "start", "already processing", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation fallback")
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrModelLoad, "whisperx", "load models", "uvx not installed", nil)
	got := Message(err)
	want := "whisperx: load models: uvx not installed"
	if got != want {
		t.Fatalf("Message = %q, want %q", got, want)
	}
	if Message(nil) != "" {
		t.Fatal("Message(nil) should be empty")
	}
}
