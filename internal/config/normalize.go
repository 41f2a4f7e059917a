package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisperX()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	// Derived directories default to subdirectories of the data dir.
	if strings.TrimSpace(c.Paths.UploadsDir) == "" {
		c.Paths.UploadsDir = filepath.Join(c.Paths.DataDir, "uploads")
	}
	if strings.TrimSpace(c.Paths.TranscriptsDir) == "" {
		c.Paths.TranscriptsDir = filepath.Join(c.Paths.DataDir, "transcripts")
	}
	if strings.TrimSpace(c.Paths.StatusDir) == "" {
		c.Paths.StatusDir = filepath.Join(c.Paths.DataDir, "status")
	}
	if c.Paths.UploadsDir, err = expandPath(c.Paths.UploadsDir); err != nil {
		return fmt.Errorf("paths.uploads_dir: %w", err)
	}
	if c.Paths.TranscriptsDir, err = expandPath(c.Paths.TranscriptsDir); err != nil {
		return fmt.Errorf("paths.transcripts_dir: %w", err)
	}
	if c.Paths.StatusDir, err = expandPath(c.Paths.StatusDir); err != nil {
		return fmt.Errorf("paths.status_dir: %w", err)
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeWhisperX() {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultVADMethod
	}
	if c.WhisperX.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGINGFACE_TOKEN"); ok {
			c.WhisperX.HFToken = value
		}
	}
	if c.WhisperX.MaxSpeakers <= 0 {
		c.WhisperX.MaxSpeakers = defaultMaxSpeakers
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.RecoveryReportTTL <= 0 {
		c.Workflow.RecoveryReportTTL = defaultRecoveryReportTTL
	}
	if c.Workflow.MaxUploadMiB <= 0 {
		c.Workflow.MaxUploadMiB = defaultMaxUploadMiB
	}
	if c.Workflow.MinFreeSpaceMiB < 0 {
		c.Workflow.MinFreeSpaceMiB = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lowerExt(filename string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
}
