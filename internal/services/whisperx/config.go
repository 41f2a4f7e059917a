package whisperx

import "scribe/internal/config"

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v2").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token gating pyannote diarization.
	HFToken string
	// MinSpeakers and MaxSpeakers bound the diarization speaker search.
	MinSpeakers int
	MaxSpeakers int
}

// FromConfig maps the application configuration onto provider settings.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Model:       cfg.WhisperX.Model,
		CUDAEnabled: cfg.WhisperX.CUDAEnabled,
		VADMethod:   cfg.WhisperX.VADMethod,
		HFToken:     cfg.WhisperX.HFToken,
		MaxSpeakers: cfg.WhisperX.MaxSpeakers,
	}
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v2"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)
