// Package daemonrun wires the full daemon runtime: logging, storage, the
// transcription pipeline, and the HTTP API. It exists so cmd/scribed stays a
// thin entry point.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"scribe/internal/config"
	"scribe/internal/daemon"
	"scribe/internal/jobs"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/pipeline"
	"scribe/internal/recovery"
	"scribe/internal/services/whisperx"
	"scribe/internal/status"
	"scribe/internal/transcription"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the scribe daemon runtime loop and blocks until SIGINT or
// SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	var logger *slog.Logger
	var err error
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		logger, err = logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "scribe.log")},
		})
	} else {
		logger, err = logging.NewFromConfig(cfg)
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "scribe.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ledgerStore, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open run ledger", logging.Error(err))
		return err
	}

	statuses := status.NewStore(cfg.Paths.StatusDir)
	provider := whisperx.NewService(whisperx.FromConfig(cfg), whisperx.FFmpegCommand, "")

	registry := pipeline.NewRegistry()
	steps := transcription.DefaultSteps(registry)
	orchestrator, err := transcription.NewOrchestrator(provider, registry, steps, statuses, logger)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	scanner := recovery.NewScanner(statuses, cfg.Paths,
		time.Duration(cfg.Workflow.RecoveryReportTTL)*time.Second, logger)

	jobSvc, err := jobs.NewService(jobs.Deps{
		Config:   cfg,
		Statuses: statuses,
		Runner:   orchestrator,
		Scanner:  scanner,
		Ledger:   ledgerStore,
		Notifier: notifications.NewService(cfg),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("create jobs service: %w", err)
	}

	d, err := daemon.New(cfg, jobSvc, ledgerStore, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("scribe daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("uvx_available", binaryAvailable(whisperx.UVXCommand)),
		logging.Bool("ffmpeg_available", binaryAvailable(whisperx.FFmpegCommand)),
		logging.Bool("hf_token_present", strings.TrimSpace(cfg.WhisperX.HFToken) != ""),
		logging.Bool("whisperx_cuda", cfg.WhisperX.CUDAEnabled),
		logging.String("whisperx_model", cfg.WhisperX.Model),
		logging.String("whisperx_vad_method", strings.TrimSpace(cfg.WhisperX.VADMethod)),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
