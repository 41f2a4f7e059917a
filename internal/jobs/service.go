package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scribe/internal/config"
	"scribe/internal/jobfiles"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/recovery"
	"scribe/internal/services"
	"scribe/internal/status"
	"scribe/internal/transcription"
)

// Runner executes one job through the pipeline. Satisfied by the
// transcription orchestrator.
type Runner interface {
	Run(ctx context.Context, id string, paths jobfiles.PathSet) (*transcription.JobResult, error)
}

// Deps wires the collaborators a Service needs. Ledger and Notifier are
// optional; a nil notifier becomes a no-op.
type Deps struct {
	Config   *config.Config
	Statuses *status.Store
	Runner   Runner
	Scanner  *recovery.Scanner
	Ledger   *ledger.Store
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Service coordinates job lifecycles. One run may be live per identifier;
// distinct identifiers run concurrently, each on its own goroutine.
type Service struct {
	cfg      *config.Config
	statuses *status.Store
	runner   Runner
	scanner  *recovery.Scanner
	ledger   *ledger.Store
	notifier notifications.Service
	logger   *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// NewService validates dependencies and returns a ready service.
func NewService(deps Deps) (*Service, error) {
	if deps.Config == nil || deps.Statuses == nil || deps.Runner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "new", "config, status store, and runner required", nil)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(deps.Config)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:      deps.Config,
		statuses: deps.Statuses,
		runner:   deps.Runner,
		scanner:  deps.Scanner,
		ledger:   deps.Ledger,
		notifier: notifier,
		logger:   logging.NewComponentLogger(deps.Logger, "jobs"),
		baseCtx:  ctx,
		cancel:   cancel,
		active:   make(map[string]struct{}),
	}, nil
}

// Start admits one job for the given uploaded filename and launches its run
// in the background. The returned identifier names the job's status and
// result artifacts. Admission fails when the file type is not allowed, the
// upload is missing, or a run for the same identifier is already live.
func (s *Service) Start(filename string) (string, error) {
	if !config.IsAllowedFile(filename) {
		return "", services.Wrap(services.ErrValidation, "jobs", "start",
			fmt.Sprintf("file type not allowed: %s", filename), nil)
	}
	paths := jobfiles.Resolve(s.cfg.Paths, filename)
	id := jobfiles.ID(filename)
	if id == "" {
		return "", services.Wrap(services.ErrValidation, "jobs", "start", "empty job identifier", nil)
	}
	if !fileExists(paths.Input) {
		return "", services.Wrap(services.ErrNotFound, "jobs", "start",
			fmt.Sprintf("no uploaded file named %s", filename), nil)
	}

	s.mu.Lock()
	if _, live := s.active[id]; live {
		s.mu.Unlock()
		return "", services.Wrap(services.ErrConflict, "jobs", "start",
			fmt.Sprintf("job %s is already processing", id), nil)
	}
	s.active[id] = struct{}{}
	s.mu.Unlock()

	// Claim the identifier in the store before the goroutine starts so a
	// poll issued immediately after Start sees a processing record.
	if err := s.statuses.Write(id, status.Record{
		State:     status.StateProcessing,
		Progress:  0,
		Step:      "Queued",
		StartTime: status.Now(),
	}); err != nil {
		s.release(id)
		return "", fmt.Errorf("jobs: claim status: %w", err)
	}

	s.wg.Add(1)
	go s.execute(id, filename, paths)
	return id, nil
}

func (s *Service) execute(id, filename string, paths jobfiles.PathSet) {
	defer s.wg.Done()
	defer s.release(id)

	ctx := logging.WithJob(s.baseCtx, id)
	logger := logging.WithContext(ctx, s.logger)
	began := time.Now()

	logger.Info("job started", logging.String("filename", filename))
	result, err := s.runner.Run(ctx, id, paths)
	elapsed := time.Since(began)

	switch {
	case errors.Is(err, transcription.ErrStopped):
		logger.Info("job stopped", logging.Duration("duration", elapsed))
		s.recordRun(ctx, ledger.Run{JobID: id, Filename: filename, Outcome: ledger.OutcomeStopped, Duration: elapsed.Seconds()})
		if nerr := s.notifier.NotifyJobStopped(ctx, id); nerr != nil {
			logger.Warn("stop notification failed", logging.Error(nerr))
		}
	case err != nil:
		logger.Error("job failed", logging.Error(err), logging.Duration("duration", elapsed))
		s.recordRun(ctx, ledger.Run{
			JobID:    id,
			Filename: filename,
			Outcome:  ledger.OutcomeError,
			Error:    services.Message(err),
			Duration: elapsed.Seconds(),
		})
		if nerr := s.notifier.NotifyJobFailed(ctx, id, err); nerr != nil {
			logger.Warn("failure notification failed", logging.Error(nerr))
		}
	default:
		logger.Info("job finished", logging.Duration("duration", elapsed))
		s.recordRun(ctx, ledger.Run{
			JobID:          id,
			Filename:       filename,
			Outcome:        ledger.OutcomeComplete,
			Language:       result.Language,
			Duration:       result.Duration,
			SegmentCount:   len(result.Segments),
			SpeakerCount:   result.Metadata.SpeakerCount,
			HasDiarization: result.Metadata.HasDiarization,
		})
		var warnings []string
		if rec, rerr := s.statuses.Read(id); rerr == nil && rec != nil {
			warnings = rec.Warnings
		}
		if nerr := s.notifier.NotifyJobCompleted(ctx, id, elapsed, warnings); nerr != nil {
			logger.Warn("completion notification failed", logging.Error(nerr))
		}
	}
}

func (s *Service) recordRun(ctx context.Context, run ledger.Run) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.RecordRun(ctx, run); err != nil {
		logging.WithContext(ctx, s.logger).Warn("ledger write failed", logging.Error(err))
	}
}

func (s *Service) release(id string) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}

// RequestStop marks a processing job for cooperative stop. The run honors
// the request at its next step boundary. Requests against jobs that are not
// processing are a no-op; requests against unknown identifiers fail.
func (s *Service) RequestStop(id string) error {
	rec, err := s.statuses.Read(id)
	if err != nil {
		return fmt.Errorf("jobs: read status: %w", err)
	}
	if rec == nil {
		return services.Wrap(services.ErrNotFound, "jobs", "stop",
			fmt.Sprintf("no job named %s", id), nil)
	}
	if rec.State != status.StateProcessing {
		return nil
	}
	stopped := status.Record{
		State:     status.StateStopped,
		Progress:  rec.Progress,
		Step:      "Stop requested",
		StartTime: rec.StartTime,
	}
	if err := s.statuses.Write(id, stopped); err != nil {
		return fmt.Errorf("jobs: persist stop request: %w", err)
	}
	s.logger.Info("stop requested", logging.String(logging.FieldJobID, id))
	return nil
}

// Status returns the persisted status record for id, or nil when the job
// has never run. Undecodable records surface with the corrupt state.
func (s *Service) Status(id string) (*status.Record, error) {
	return s.statuses.Read(id)
}

// Result loads the persisted result document for id. It is only available
// once the job has completed.
func (s *Service) Result(id string) (*transcription.ResultDocument, error) {
	rec, err := s.statuses.Read(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "result",
			fmt.Sprintf("no job named %s", id), nil)
	}
	if rec.State != status.StateComplete {
		return nil, services.Wrap(services.ErrConflict, "jobs", "result",
			fmt.Sprintf("job %s has not completed (state %s)", id, rec.State), nil)
	}
	doc, err := transcription.ReadDocument(jobfiles.ResultPath(s.cfg.Paths, id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "result",
			fmt.Sprintf("result artifact missing for %s", id), nil)
	}
	return doc, nil
}

// RunRecovery scans for and wipes stale job state, then reports how much it
// removed.
func (s *Service) RunRecovery(ctx context.Context) ([]recovery.Entry, error) {
	if s.scanner == nil {
		return nil, nil
	}
	entries, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if nerr := s.notifier.NotifyRecovery(ctx, len(entries)); nerr != nil {
		s.logger.Warn("recovery notification failed", logging.Error(nerr))
	}
	return entries, nil
}

// RecoveryReport returns the report from the most recent recovery scan, nil
// once its retention interval has lapsed.
func (s *Service) RecoveryReport() []recovery.Entry {
	if s.scanner == nil {
		return nil
	}
	return s.scanner.Report()
}

// Active reports whether a run is currently live for id.
func (s *Service) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, live := s.active[id]
	return live
}

// Shutdown cancels the base context shared by running jobs and waits for
// their goroutines to exit or the context to be done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
