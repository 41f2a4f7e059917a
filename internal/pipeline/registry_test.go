package pipeline

import (
	"math"
	"testing"
)

func buildRegistry(t *testing.T) (*Registry, []*Step) {
	t.Helper()
	r := NewRegistry()
	steps := []*Step{
		r.MustRegister("Load Models", "Loading machine learning models", 0, 20),
		r.MustRegister("Speaker Diarization", "Identifying different speakers", 20, 50),
		r.MustRegister("Transcribe Audio", "Converting speech to text", 50, 90),
		r.MustRegister("Save Results", "Saving transcription results", 90, 100),
	}
	return r, steps
}

func TestRelativeProgressBounds(t *testing.T) {
	r, steps := buildRegistry(t)
	for _, step := range steps {
		start := r.ProgressInfo(step, step.ProgressStart)
		if start.RelativeProgress != 0 {
			t.Errorf("%s: relative progress at start = %g, want 0", step.Name, start.RelativeProgress)
		}
		end := r.ProgressInfo(step, step.ProgressEnd)
		if end.RelativeProgress != 1 {
			t.Errorf("%s: relative progress at end = %g, want 1", step.Name, end.RelativeProgress)
		}
	}
}

func TestOrderAssignedMonotonically(t *testing.T) {
	r, steps := buildRegistry(t)
	for i, step := range steps {
		if step.Order != i+1 {
			t.Errorf("step %s order = %d, want %d", step.Name, step.Order, i+1)
		}
	}
	if r.TotalSteps() != 4 {
		t.Fatalf("TotalSteps = %d", r.TotalSteps())
	}
}

func TestOutOfRangeProgressNotClampedInCore(t *testing.T) {
	r, steps := buildRegistry(t)
	// Reporting the pipeline's overall 100 bound through the first step.
	info := r.ProgressInfo(steps[0], 100)
	if info.RelativeProgress <= 1 {
		t.Fatalf("expected raw relative progress > 1, got %g", info.RelativeProgress)
	}
	clamped := info.Clamped()
	if clamped.RelativeProgress != 1 {
		t.Fatalf("Clamped = %g, want 1", clamped.RelativeProgress)
	}

	below := r.ProgressInfo(steps[2], 0)
	if below.RelativeProgress >= 0 {
		t.Fatalf("expected raw relative progress < 0, got %g", below.RelativeProgress)
	}
	if got := below.Clamped().RelativeProgress; got != 0 {
		t.Fatalf("Clamped = %g, want 0", got)
	}
}

func TestRegisterRejectsEmptyRange(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Bad", "range end equals start", 10, 10); err == nil {
		t.Fatal("expected error for empty range")
	}
	if _, err := r.Register("Worse", "range inverted", 20, 10); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, err := r.Register("", "no name", 0, 1); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Load Models", "", 0, 10); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := r.Register("Load Models", "", 10, 20); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestProgressInfoNilStep(t *testing.T) {
	r, _ := buildRegistry(t)
	info := r.ProgressInfo(nil, 0)
	if info.StepNumber != 0 || info.TotalSteps != 4 {
		t.Fatalf("unexpected nil-step info: %+v", info)
	}
	if info.StepName != "Not started" {
		t.Fatalf("step name = %q", info.StepName)
	}
}

func TestProgressInfoMidpoint(t *testing.T) {
	r, steps := buildRegistry(t)
	info := r.ProgressInfo(steps[1], 35)
	if math.Abs(info.RelativeProgress-0.5) > 1e-9 {
		t.Fatalf("midpoint relative progress = %g, want 0.5", info.RelativeProgress)
	}
}
