package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileSuffix = ".stats.json"

// Store manages one JSON status file per job identifier inside a single
// directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on first
// write if missing.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the status file location for a job identifier.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+fileSuffix)
}

// Write atomically overwrites the status record for id. The record lands via
// a temp file and rename so readers never observe a partial write.
func (s *Store) Write(id string, rec Record) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("status: job identifier required")
	}
	if rec.LastUpdated == 0 {
		rec.LastUpdated = Now()
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("status: ensure dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("status: encode record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("status: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("status: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("status: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("status: replace record: %w", err)
	}
	return nil
}

// Read returns the status record for id, or nil when no record has ever been
// written. A record that exists but cannot be decoded is reported with
// StateCorrupt rather than an error so recovery can act on it.
func (s *Store) Read(id string) (*Record, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("status: read record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return &Record{State: StateCorrupt}, nil
	}
	if !knownState(rec.State) {
		return &Record{State: StateCorrupt}, nil
	}
	return &rec, nil
}

// Exists reports whether a status record is present for id.
func (s *Store) Exists(id string) bool {
	info, err := os.Stat(s.Path(id))
	return err == nil && !info.IsDir()
}

// Delete removes the status record for id. Missing records are not an error.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.Path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("status: delete record: %w", err)
	}
	return nil
}

// List returns the identifiers of all persisted status records, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("status: list records: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}
