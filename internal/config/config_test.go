package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.WhisperX.Model != defaultWhisperXModel {
		t.Fatalf("model = %q", cfg.WhisperX.Model)
	}
	if cfg.Paths.UploadsDir != filepath.Join(cfg.Paths.DataDir, "uploads") {
		t.Fatalf("uploads dir not derived from data dir: %q", cfg.Paths.UploadsDir)
	}
	if cfg.Workflow.RecoveryReportTTL != defaultRecoveryReportTTL {
		t.Fatalf("recovery ttl = %d", cfg.Workflow.RecoveryReportTTL)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
api_bind = "127.0.0.1:0"

[whisperx]
model = "large-v3"
max_speakers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.WhisperX.Model != "large-v3" || cfg.WhisperX.MaxSpeakers != 4 {
		t.Fatalf("whisperx section not applied: %+v", cfg.WhisperX)
	}
	if cfg.Paths.StatusDir != filepath.Join(dir, "data", "status") {
		t.Fatalf("status dir = %q", cfg.Paths.StatusDir)
	}
}

func TestValidateRejectsBadVADMethod(t *testing.T) {
	cfg := Default()
	cfg.WhisperX.VADMethod = "loudness"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidatePyannoteRequiresToken(t *testing.T) {
	cfg := Default()
	cfg.WhisperX.VADMethod = "pyannote"
	cfg.WhisperX.HFToken = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected hf_token requirement error")
	}
	cfg.WhisperX.HFToken = "hf_test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with token set: %v", err)
	}
}

func TestIsAllowedFile(t *testing.T) {
	for _, name := range []string{"a.wav", "b.MP3", "c.flac", "d.m4a"} {
		if !IsAllowedFile(name) {
			t.Errorf("expected %q to be allowed", name)
		}
	}
	for _, name := range []string{"e.txt", "f.exe", "noext", ""} {
		if IsAllowedFile(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[whisperx]") {
		t.Fatal("sample config missing whisperx section")
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.UploadsDir = ""
	cfg.Paths.TranscriptsDir = ""
	cfg.Paths.StatusDir = ""
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.UploadsDir, cfg.Paths.TranscriptsDir, cfg.Paths.StatusDir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("expected directory %q", p)
		}
	}
}
