package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/jobs"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/preflight"
	"scribe/internal/recovery"
)

// Daemon coordinates the background job service and enforces
// single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	jobs   *jobs.Service
	ledger *ledger.Store

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	LedgerPath   string
	Dependencies []deps.Status
	Preflight    []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, jobSvc *jobs.Service, ledgerStore *ledger.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || jobSvc == nil {
		return nil, errors.New("daemon requires config and jobs service")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "scribed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		jobs:     jobSvc,
		ledger:   ledgerStore,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, wipes stale job state, and brings up the
// HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	if failed := preflight.Failures(preflight.RunAll(d.cfg)); len(failed) > 0 {
		for _, result := range failed {
			d.logger.Error("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
		}
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight failed: %s", failed[0].Name)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	entries, err := d.jobs.RunRecovery(d.ctx)
	if err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return fmt.Errorf("startup recovery: %w", err)
	}
	if len(entries) > 0 {
		d.logger.Info("startup recovery wiped stale jobs", logging.Int("wiped", len(entries)))
	}

	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("scribe daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the API, waits for running jobs, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.jobs.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("jobs did not drain before deadline", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.ledger != nil {
		return d.ledger.Close()
	}
	return nil
}

// Addr returns the API listen address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	ledgerPath := ""
	if d.ledger != nil {
		ledgerPath = d.ledger.Path()
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		LedgerPath:   ledgerPath,
		Dependencies: preflight.CheckSystemDeps(),
		Preflight:    preflight.RunAll(d.cfg),
	}
}

// RecoveryReport exposes the jobs service's recovery report to the API.
func (d *Daemon) RecoveryReport() []recovery.Entry {
	return d.jobs.RecoveryReport()
}
