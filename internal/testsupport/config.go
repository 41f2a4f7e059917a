package testsupport

import (
	"path/filepath"
	"testing"

	"scribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Directories are created up front so stores and checks can use them
// immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.UploadsDir = filepath.Join(base, "data", "uploads")
	cfgVal.Paths.TranscriptsDir = filepath.Join(base, "data", "transcripts")
	cfgVal.Paths.StatusDir = filepath.Join(base, "data", "status")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfgVal)
	}

	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfgVal
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}

// WithHFToken sets the Hugging Face token that enables diarization.
func WithHFToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.WhisperX.HFToken = token
	}
}
