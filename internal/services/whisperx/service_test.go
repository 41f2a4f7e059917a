package whisperx

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/transcription"
)

// fakeRunner simulates the uvx/ffmpeg invocations by writing a canned
// WhisperX JSON document into the requested output directory.
type fakeRunner struct {
	payload  payload
	commands [][]string
}

func (r *fakeRunner) run(_ context.Context, name string, args ...string) error {
	cmd := append([]string{name}, args...)
	r.commands = append(r.commands, cmd)
	if name == FFmpegCommand {
		// ffmpeg extraction: create the destination wav.
		return os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
	}

	var outputDir, source string
	for i, arg := range args {
		if arg == "--output_dir" && i+1 < len(args) {
			outputDir = args[i+1]
		}
		if arg == "whisperx" && i+1 < len(args) {
			source = args[i+1]
		}
	}
	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	data, err := json.Marshal(r.payload)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, baseName+".json"), data, 0o644)
}

func (r *fakeRunner) argsFor(name string) []string {
	for _, cmd := range r.commands {
		if cmd[0] == name {
			return cmd[1:]
		}
	}
	return nil
}

func hasFlagValue(args []string, flag, value string) bool {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) && args[i+1] == value {
			return true
		}
	}
	return false
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, cfg Config, runner *fakeRunner) *Service {
	t.Helper()
	svc := NewService(cfg, "", t.TempDir())
	svc.WithCommandRunner(runner.run)
	return svc
}

func TestTranscribeAudioParsesOutput(t *testing.T) {
	runner := &fakeRunner{payload: payload{
		Segments: []payloadSegment{
			{Start: 0, End: 2.5, Text: " hello there "},
			{Start: 2.5, End: 4, Text: "general remarks"},
		},
		Language: "en",
	}}
	svc := newTestService(t, Config{Model: "large-v2"}, runner)

	tr, err := svc.TranscribeAudio(context.Background(), "/tmp/meeting.wav")
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("segments = %+v", tr.Segments)
	}
	if tr.Segments[0].Text != "hello there" {
		t.Errorf("text not trimmed: %q", tr.Segments[0].Text)
	}
	if tr.Language != "en" || tr.Duration != 4 {
		t.Errorf("language/duration = %q/%g", tr.Language, tr.Duration)
	}

	args := runner.argsFor(UVXCommand)
	if args == nil {
		t.Fatal("uvx never invoked")
	}
	if !hasFlagValue(args, "--model", "large-v2") {
		t.Errorf("model flag missing: %v", args)
	}
	if !hasFlagValue(args, "--vad_method", VADMethodSilero) {
		t.Errorf("default vad method missing: %v", args)
	}
	if !hasFlagValue(args, "--device", CPUDevice) || !hasFlagValue(args, "--compute_type", CPUComputeType) {
		t.Errorf("cpu device flags missing: %v", args)
	}
	if hasFlag(args, "--diarize") {
		t.Errorf("transcription pass must not diarize: %v", args)
	}
}

func TestTranscribeAudioExtractsNonWavInput(t *testing.T) {
	runner := &fakeRunner{payload: payload{Language: "en"}}
	svc := newTestService(t, Config{}, runner)

	if _, err := svc.TranscribeAudio(context.Background(), "/tmp/meeting.mp3"); err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	ffmpegArgs := runner.argsFor(FFmpegCommand)
	if ffmpegArgs == nil {
		t.Fatal("ffmpeg extraction skipped for mp3 input")
	}
	if !hasFlagValue(ffmpegArgs, "-ar", "16000") || !hasFlagValue(ffmpegArgs, "-ac", "1") {
		t.Errorf("extraction args = %v", ffmpegArgs)
	}
	uvxArgs := runner.argsFor(UVXCommand)
	for i, arg := range uvxArgs {
		if arg == "whisperx" {
			if filepath.Ext(uvxArgs[i+1]) != ".wav" {
				t.Errorf("whisperx fed non-wav source %q", uvxArgs[i+1])
			}
		}
	}
}

func TestPerformDiarizationWithoutTokenPassesThrough(t *testing.T) {
	runner := &fakeRunner{}
	svc := newTestService(t, Config{}, runner)

	in := transcription.Transcription{
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: "hi"}},
	}
	diar, err := svc.PerformDiarization(context.Background(), "/tmp/meeting.wav", in)
	if err != nil {
		t.Fatalf("PerformDiarization: %v", err)
	}
	if len(diar.Segments) != 1 || diar.Segments[0].Text != "hi" {
		t.Errorf("segments = %+v", diar.Segments)
	}
	if len(diar.Speakers) != 0 {
		t.Errorf("speakers = %v", diar.Speakers)
	}
	if len(runner.commands) != 0 {
		t.Errorf("commands ran without a token: %v", runner.commands)
	}
}

func TestPerformDiarizationWithToken(t *testing.T) {
	runner := &fakeRunner{payload: payload{
		Segments: []payloadSegment{
			{Start: 0, End: 1, Text: "hi", Speaker: "SPEAKER_00"},
			{Start: 1, End: 2, Text: "hello", Speaker: "SPEAKER_01"},
			{Start: 2, End: 3, Text: "again", Speaker: "SPEAKER_00"},
		},
		Language: "en",
	}}
	svc := newTestService(t, Config{HFToken: "hf_secret", MaxSpeakers: 4}, runner)

	diar, err := svc.PerformDiarization(context.Background(), "/tmp/meeting.wav", transcription.Transcription{})
	if err != nil {
		t.Fatalf("PerformDiarization: %v", err)
	}
	if len(diar.Segments) != 3 {
		t.Fatalf("segments = %+v", diar.Segments)
	}
	if len(diar.Speakers) != 2 {
		t.Errorf("speakers = %v", diar.Speakers)
	}

	args := runner.argsFor(UVXCommand)
	if !hasFlag(args, "--diarize") {
		t.Errorf("diarize flag missing: %v", args)
	}
	if !hasFlagValue(args, "--hf_token", "hf_secret") {
		t.Errorf("hf token missing: %v", args)
	}
	if !hasFlagValue(args, "--max_speakers", "4") {
		t.Errorf("max speakers missing: %v", args)
	}
}

func TestBuildArgsCUDA(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true}, "", "")
	args := svc.buildArgs("/tmp/in.wav", "/tmp/out", false)
	if !hasFlagValue(args, "--index-url", CUDAIndexURL) {
		t.Errorf("cuda index url missing: %v", args)
	}
	if !hasFlagValue(args, "--device", CUDADevice) {
		t.Errorf("cuda device missing: %v", args)
	}
	if hasFlag(args, "--compute_type") {
		t.Errorf("compute type forced on cuda: %v", args)
	}
}

func TestBuildArgsPyannoteVAD(t *testing.T) {
	svc := NewService(Config{VADMethod: VADMethodPyannote, HFToken: "hf_secret"}, "", "")
	args := svc.buildArgs("/tmp/in.wav", "/tmp/out", false)
	if !hasFlagValue(args, "--vad_method", VADMethodPyannote) {
		t.Errorf("vad method missing: %v", args)
	}
	if !hasFlagValue(args, "--hf_token", "hf_secret") {
		t.Errorf("hf token missing for pyannote vad: %v", args)
	}
}

func TestModelNameDefault(t *testing.T) {
	svc := NewService(Config{}, "", "")
	if svc.ModelName() != DefaultModel {
		t.Errorf("ModelName = %q", svc.ModelName())
	}
}
