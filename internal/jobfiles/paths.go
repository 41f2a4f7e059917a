package jobfiles

import (
	"path/filepath"
	"strings"

	"scribe/internal/config"
	"scribe/internal/textutil"
)

// PathSet locates the three artifacts belonging to one job.
type PathSet struct {
	Input  string // uploaded audio file
	Result string // transcription result JSON
	Status string // persisted job status JSON
}

// ID derives the job identifier from an uploaded filename: the sanitized
// base name with its extension stripped.
func ID(filename string) string {
	name := textutil.SanitizeFileName(filename)
	if name == "" {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Resolve computes the artifact locations for an uploaded filename.
func Resolve(paths config.Paths, filename string) PathSet {
	name := textutil.SanitizeFileName(filename)
	id := ID(name)
	return PathSet{
		Input:  filepath.Join(paths.UploadsDir, name),
		Result: ResultPath(paths, id),
		Status: filepath.Join(paths.StatusDir, id+".stats.json"),
	}
}

// ResultPath computes the result artifact location for a job identifier.
// Used by recovery, which only knows identifiers.
func ResultPath(paths config.Paths, id string) string {
	return filepath.Join(paths.TranscriptsDir, id+".json")
}
