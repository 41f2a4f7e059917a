package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scribe/internal/jobfiles"
	langpkg "scribe/internal/language"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/services"
	"scribe/internal/status"
)

// ErrStopped reports that a run ended because a stop was requested. Callers
// treat it as a clean outcome, not a failure.
var ErrStopped = errors.New("job stopped by user request")

// StatusStore is the slice of the status store the orchestrator needs.
type StatusStore interface {
	Read(id string) (*status.Record, error)
	Write(id string, rec status.Record) error
}

// Orchestrator executes one job at a time through the bound pipeline steps.
// It is safe for concurrent use across distinct job identifiers; per-job
// serialization is the caller's responsibility.
type Orchestrator struct {
	provider Provider
	registry *pipeline.Registry
	steps    Steps
	statuses StatusStore
	logger   *slog.Logger
}

// NewOrchestrator wires an orchestrator. The step bindings must be complete.
func NewOrchestrator(provider Provider, registry *pipeline.Registry, steps Steps, statuses StatusStore, logger *slog.Logger) (*Orchestrator, error) {
	if provider == nil {
		return nil, services.Wrap(services.ErrConfiguration, "orchestrator", "new", "provider required", nil)
	}
	if registry == nil || statuses == nil {
		return nil, services.Wrap(services.ErrConfiguration, "orchestrator", "new", "registry and status store required", nil)
	}
	if err := steps.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		steps:    steps,
		statuses: statuses,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
	}, nil
}

// Run executes the full pipeline for one job. The identifier names the
// status record; paths locate the audio input and the result artifact.
//
// Each step is bracketed by status writes at its start and end progress. A
// stop request observed at a step boundary ends the run with ErrStopped
// before that step's body executes; it is never honored mid-step. A
// diarization failure degrades the run (warning on the final record) while a
// transcription or save failure aborts it with a persisted error status.
func (o *Orchestrator) Run(ctx context.Context, id string, paths jobfiles.PathSet) (*JobResult, error) {
	ctx = logging.WithJob(ctx, id)
	logger := logging.WithContext(ctx, o.logger)

	startTime := status.Now()
	if existing, err := o.statuses.Read(id); err == nil && existing != nil &&
		existing.State == status.StateProcessing && existing.StartTime > 0 {
		startTime = existing.StartTime
	}

	began := time.Now()
	timings := make(map[string]time.Duration)

	if err := o.runStep(ctx, id, o.steps.Load, startTime, timings, func(stepCtx context.Context) error {
		if err := o.provider.LoadModels(stepCtx); err != nil {
			return services.Wrap(services.ErrModelLoad, "provider", "load models", "", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Diarization is best-effort: a provider failure here becomes a warning
	// on the completed job, never an abort.
	var diar Diarization
	var diarizationError string
	if err := o.runStep(ctx, id, o.steps.Diarize, startTime, timings, func(stepCtx context.Context) error {
		d, err := o.provider.PerformDiarization(stepCtx, paths.Input, Transcription{})
		if err != nil {
			diarizationError = services.Message(err)
			logging.WithContext(stepCtx, o.logger).Warn("diarization failed, continuing without speaker labels",
				logging.Error(err))
			return nil
		}
		diar = d
		return nil
	}); err != nil {
		return nil, err
	}

	var tr Transcription
	if err := o.runStep(ctx, id, o.steps.Transcribe, startTime, timings, func(stepCtx context.Context) error {
		t, err := o.provider.TranscribeAudio(stepCtx, paths.Input)
		if err != nil {
			return services.Wrap(services.ErrTranscription, "provider", "transcribe audio", "", err)
		}
		tr = t
		return nil
	}); err != nil {
		return nil, err
	}

	segments, speakers, hasDiarization := mergeOutputs(diar, tr)
	result := buildResult(paths.Input, segments, speakers, tr.Language, tr.Duration, hasDiarization, o.modelName(), diarizationError)

	warnings := runWarnings(hasDiarization, diarizationError)
	if err := o.runStep(ctx, id, o.steps.Save, startTime, timings, func(context.Context) error {
		return WriteDocument(paths.Result, result.Document(warnings))
	}); err != nil {
		return nil, err
	}

	total := o.registry.TotalSteps()
	final := pipeline.StepProgressInfo{
		StepNumber:       total,
		TotalSteps:       total,
		StepName:         "Complete",
		StepDescription:  "Transcription complete",
		Progress:         100,
		RelativeProgress: 1,
	}
	if err := o.statuses.Write(id, status.Record{
		State:     status.StateComplete,
		Progress:  100,
		Step:      "Complete",
		StepInfo:  &final,
		Warnings:  warnings,
		StartTime: startTime,
	}); err != nil {
		return nil, fmt.Errorf("transcription: persist completion: %w", err)
	}

	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("language", langpkg.DisplayName(result.Language)),
		logging.Bool("has_diarization", hasDiarization),
		logging.Int("segments", len(result.Segments)),
		logging.Duration("duration", time.Since(began)))
	for name, elapsed := range timings {
		logger.Debug("step timing", logging.String("step", name), logging.Duration("elapsed", elapsed))
	}
	return result, nil
}

// runStep brackets one step body with boundary checks and status writes.
func (o *Orchestrator) runStep(ctx context.Context, id string, step *pipeline.Step, startTime float64, timings map[string]time.Duration, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	current, err := o.statuses.Read(id)
	if err != nil {
		return fmt.Errorf("transcription: read status before %q: %w", step.Name, err)
	}
	if current != nil && current.State == status.StateStopped {
		rec := status.Record{
			State:     status.StateStopped,
			Progress:  current.Progress,
			Step:      "Stopped by user",
			StartTime: startTime,
		}
		if err := o.statuses.Write(id, rec); err != nil {
			return fmt.Errorf("transcription: persist stop: %w", err)
		}
		logging.WithContext(ctx, o.logger).Info("stop request honored at step boundary",
			logging.String(logging.FieldEventType, "job_stopped"),
			logging.String(logging.FieldStep, step.Name))
		return ErrStopped
	}

	stepCtx := logging.WithStep(ctx, step.Name)
	stepLogger := logging.WithContext(stepCtx, o.logger)

	startInfo := o.registry.ProgressInfo(step, step.ProgressStart).Clamped()
	if err := o.statuses.Write(id, status.Record{
		State:     status.StateProcessing,
		Progress:  step.ProgressStart,
		Step:      step.Description,
		StepInfo:  &startInfo,
		StartTime: startTime,
	}); err != nil {
		return fmt.Errorf("transcription: persist start of %q: %w", step.Name, err)
	}
	stepLogger.Info("step started",
		logging.String(logging.FieldEventType, "step_start"),
		logging.Float64("progress", step.ProgressStart))

	began := time.Now()
	stepErr := fn(stepCtx)
	timings[step.Name] = time.Since(began)

	if stepErr != nil {
		rec := status.Record{
			State:     status.StateError,
			Progress:  step.ProgressStart,
			Step:      step.Name,
			Error:     services.Message(stepErr),
			StartTime: startTime,
		}
		if werr := o.statuses.Write(id, rec); werr != nil {
			stepLogger.Error("failed to persist step failure", logging.Error(werr))
		}
		stepLogger.Error("step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.Duration("elapsed", timings[step.Name]),
			logging.Error(stepErr))
		return stepErr
	}

	// A stop filed while the body ran must survive to the next boundary
	// check; skipping the end-of-step write keeps the stopped record intact.
	if current, err := o.statuses.Read(id); err == nil && current != nil && current.State == status.StateStopped {
		stepLogger.Info("step completed with stop pending",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.Duration("elapsed", timings[step.Name]))
		return nil
	}

	endInfo := o.registry.ProgressInfo(step, step.ProgressEnd).Clamped()
	if err := o.statuses.Write(id, status.Record{
		State:     status.StateProcessing,
		Progress:  step.ProgressEnd,
		Step:      "Completed " + step.Name,
		StepInfo:  &endInfo,
		StartTime: startTime,
	}); err != nil {
		return fmt.Errorf("transcription: persist end of %q: %w", step.Name, err)
	}
	stepLogger.Info("step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Float64("progress", step.ProgressEnd),
		logging.Duration("elapsed", timings[step.Name]))
	return nil
}

func (o *Orchestrator) modelName() string {
	if namer, ok := o.provider.(ModelNamer); ok {
		return namer.ModelName()
	}
	return ""
}

func runWarnings(hasDiarization bool, diarizationError string) []string {
	if hasDiarization {
		return nil
	}
	warning := "Speaker diarization was not performed"
	if diarizationError != "" {
		warning = "Speaker diarization failed: " + diarizationError
	}
	return []string{warning}
}
