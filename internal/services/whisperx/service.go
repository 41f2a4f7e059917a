package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	langpkg "scribe/internal/language"
	"scribe/internal/services"
	"scribe/internal/transcription"
)

// Service runs WhisperX through uvx and adapts its output to the
// transcription provider contract.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	workRoot      string
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(name string) (string, error)
}

// NewService creates a WhisperX service with the given configuration.
// workRoot hosts per-invocation scratch directories; empty means the system
// temp directory.
func NewService(cfg Config, ffmpegBinary, workRoot string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		workRoot:     workRoot,
		lookPath:     exec.LookPath,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// ModelName returns the configured model name for result metadata.
func (s *Service) ModelName() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// DiarizationEnabled reports whether the service holds the token pyannote
// diarization requires.
func (s *Service) DiarizationEnabled() bool {
	return s.cfg.HFToken != ""
}

// LoadModels verifies the external tools WhisperX runs depend on. Model
// weights themselves are fetched lazily by the CLI on first use.
func (s *Service) LoadModels(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.commandRunner != nil {
		return nil
	}
	for _, tool := range []string{UVXCommand, s.ffmpegBinary} {
		if _, err := s.lookPath(tool); err != nil {
			return services.Wrap(services.ErrModelLoad, "whisperx", "load models",
				fmt.Sprintf("%s not found in PATH", tool), err)
		}
	}
	return nil
}

// TranscribeAudio converts speech to text for one audio file.
func (s *Service) TranscribeAudio(ctx context.Context, audioPath string) (transcription.Transcription, error) {
	payload, err := s.invoke(ctx, audioPath, false)
	if err != nil {
		return transcription.Transcription{}, err
	}
	segments := payload.toSegments()
	return transcription.Transcription{
		Segments: segments,
		Language: payload.Language,
		Duration: lastEnd(segments),
	}, nil
}

// PerformDiarization separates speakers for one audio file. Without a
// Hugging Face token the input transcription passes through unchanged, so
// callers see an absent diarization rather than an error.
func (s *Service) PerformDiarization(ctx context.Context, audioPath string, tr transcription.Transcription) (transcription.Diarization, error) {
	if !s.DiarizationEnabled() {
		return transcription.Diarization{Segments: tr.Segments}, nil
	}
	payload, err := s.invoke(ctx, audioPath, true)
	if err != nil {
		return transcription.Diarization{}, services.Wrap(services.ErrDiarization, "whisperx", "diarize", "", err)
	}
	segments := payload.toSegments()
	return transcription.Diarization{
		Segments: segments,
		Speakers: speakerTags(segments),
	}, nil
}

// invoke runs one WhisperX pass over the audio and parses its JSON output.
func (s *Service) invoke(ctx context.Context, audioPath string, diarize bool) (*payload, error) {
	if audioPath == "" {
		return nil, fmt.Errorf("whisperx: audio path required")
	}

	workDir, err := os.MkdirTemp(s.workRoot, "whisperx-*")
	if err != nil {
		return nil, fmt.Errorf("whisperx: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	source := audioPath
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		source = filepath.Join(workDir, "input.wav")
		if err := s.extract(ctx, audioPath, source); err != nil {
			return nil, err
		}
	}

	args := s.buildArgs(source, workDir, diarize)
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return loadPayload(filepath.Join(workDir, baseName+".json"))
}

func (s *Service) extract(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildFFmpegExtractArgs(source, dest)...)
	}
	return ExtractAudio(ctx, s.ffmpegBinary, source, dest)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// WhisperX/pyannote. Force legacy behavior so checkpoints load.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for one WhisperX pass.
func (s *Service) buildArgs(source, outputDir string, diarize bool) []string {
	args := make([]string, 0, 32)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.ModelName(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if diarize {
		args = append(args, "--diarize")
		if s.cfg.HFToken != "" && vadMethod != VADMethodPyannote {
			args = append(args, "--hf_token", s.cfg.HFToken)
		}
		if s.cfg.MinSpeakers > 0 {
			args = append(args, "--min_speakers", strconv.Itoa(s.cfg.MinSpeakers))
		}
		if s.cfg.MaxSpeakers > 0 {
			args = append(args, "--max_speakers", strconv.Itoa(s.cfg.MaxSpeakers))
		}
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// payload is the JSON structure WhisperX writes next to its input.
type payload struct {
	Segments []payloadSegment `json:"segments"`
	Language string           `json:"language"`
}

type payloadSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

func (p *payload) toSegments() []transcription.Segment {
	segments := make([]transcription.Segment, 0, len(p.Segments))
	for _, seg := range p.Segments {
		segments = append(segments, transcription.Segment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    strings.TrimSpace(seg.Text),
			Speaker: seg.Speaker,
		})
	}
	return segments
}

func loadPayload(jsonPath string) (*payload, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("whisperx: read output: %w", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("whisperx: parse output json: %w", err)
	}
	p.Language = langpkg.ToISO2(p.Language)
	return &p, nil
}

func lastEnd(segments []transcription.Segment) float64 {
	var end float64
	for _, seg := range segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}

func speakerTags(segments []transcription.Segment) []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		speakers = append(speakers, seg.Speaker)
	}
	return speakers
}
