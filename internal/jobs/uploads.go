package jobs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/textutil"
)

// SaveUpload stores an uploaded audio file under its sanitized name and
// returns that name. The caller is responsible for bounding the reader (the
// API layer uses http.MaxBytesReader with the configured ceiling).
func (s *Service) SaveUpload(filename string, r io.Reader) (string, error) {
	name := textutil.SanitizeFileName(filename)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "jobs", "upload", "filename required", nil)
	}
	if !config.IsAllowedFile(name) {
		return "", services.Wrap(services.ErrValidation, "jobs", "upload",
			fmt.Sprintf("file type not allowed: %s", name), nil)
	}
	if err := os.MkdirAll(s.cfg.Paths.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("jobs: ensure uploads dir: %w", err)
	}

	dest := filepath.Join(s.cfg.Paths.UploadsDir, name)
	tmp, err := os.CreateTemp(s.cfg.Paths.UploadsDir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("jobs: create temp upload: %w", err)
	}
	tmpName := tmp.Name()
	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("jobs: write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("jobs: close upload: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("jobs: place upload: %w", err)
	}

	s.logger.Info("upload stored",
		logging.String("filename", name),
		logging.Int64("bytes", written))
	return name, nil
}

// ListFiles returns the uploaded filenames with accepted extensions, sorted.
func (s *Service) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Paths.UploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jobs: list uploads: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "" || name[0] == '.' || !config.IsAllowedFile(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
