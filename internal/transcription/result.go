package transcription

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/status"
)

// JobResult is the in-memory outcome of one completed run.
type JobResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Speakers []string  `json:"speakers"`
	Duration float64   `json:"duration"`
	Metadata Metadata  `json:"metadata"`
}

// Metadata carries the run-level facts attached to a result.
type Metadata struct {
	Filename         string  `json:"filename"`
	Timestamp        float64 `json:"timestamp"`
	Model            string  `json:"model,omitempty"`
	HasDiarization   bool    `json:"has_diarization"`
	SpeakerCount     int     `json:"num_speakers"`
	DiarizationError string  `json:"diarization_error,omitempty"`
}

// ResultDocument is the persisted shape of a result file.
type ResultDocument struct {
	Segments []Segment      `json:"segments"`
	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata is the metadata block of a persisted result. Speakers is
// always present, empty when no diarization ran, so consumers never see null.
type ResultMetadata struct {
	Language       string   `json:"language"`
	Duration       float64  `json:"duration"`
	Speakers       []string `json:"speakers"`
	SpeakerCount   int      `json:"num_speakers"`
	Timestamp      float64  `json:"timestamp"`
	Model          string   `json:"model,omitempty"`
	HasDiarization bool     `json:"has_diarization"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Document converts the result into its persisted shape.
func (r *JobResult) Document(warnings []string) ResultDocument {
	speakers := r.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	segments := r.Segments
	if segments == nil {
		segments = []Segment{}
	}
	return ResultDocument{
		Segments: segments,
		Metadata: ResultMetadata{
			Language:       r.Language,
			Duration:       r.Duration,
			Speakers:       speakers,
			SpeakerCount:   r.Metadata.SpeakerCount,
			Timestamp:      r.Metadata.Timestamp,
			Model:          r.Metadata.Model,
			HasDiarization: r.Metadata.HasDiarization,
			Warnings:       warnings,
		},
	}
}

// WriteDocument persists a result document atomically via temp file and
// rename, matching the status store's write discipline.
func WriteDocument(path string, doc ResultDocument) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("transcription: ensure result dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("transcription: encode result: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("transcription: create temp result: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("transcription: write temp result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("transcription: close temp result: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("transcription: replace result: %w", err)
	}
	return nil
}

// ReadDocument loads a persisted result document.
func ReadDocument(path string) (*ResultDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("transcription: read result: %w", err)
	}
	var doc ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("transcription: decode result: %w", err)
	}
	return &doc, nil
}

func buildResult(filename string, segments []Segment, speakers []string, language string, duration float64, hasDiarization bool, model, diarizationError string) *JobResult {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	if speakers == nil {
		speakers = []string{}
	}
	return &JobResult{
		Text:     strings.Join(texts, "\n"),
		Language: language,
		Segments: segments,
		Speakers: speakers,
		Duration: duration,
		Metadata: Metadata{
			Filename:         filepath.Base(filename),
			Timestamp:        status.Now(),
			Model:            model,
			HasDiarization:   hasDiarization,
			SpeakerCount:     len(speakers),
			DiarizationError: diarizationError,
		},
	}
}
