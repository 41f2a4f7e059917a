package logging

import (
	"context"
	"testing"
)

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got.String() != "INFO" {
		t.Fatalf("parseLevel(bogus) = %v", got)
	}
	if got := parseLevel("DEBUG"); got.String() != "DEBUG" {
		t.Fatalf("parseLevel(DEBUG) = %v", got)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextFieldsRoundTrip(t *testing.T) {
	ctx := WithJob(context.Background(), "meeting")
	ctx = WithStep(ctx, "Transcribe Audio")

	fields := ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldJobID || fields[0].Value.String() != "meeting" {
		t.Fatalf("unexpected job field: %v", fields[0])
	}
	if fields[1].Key != FieldStep {
		t.Fatalf("unexpected step field: %v", fields[1])
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}
