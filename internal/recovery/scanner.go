package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"scribe/internal/config"
	"scribe/internal/jobfiles"
	"scribe/internal/logging"
	"scribe/internal/status"
)

// Entry records one job the scanner wiped.
type Entry struct {
	ID          string       `json:"id"`
	PriorState  status.State `json:"prior_state"`
	RecoveredAt float64      `json:"recovered_at"`
}

// Scanner wipes stale job state at startup and serves the resulting report
// until its retention interval lapses.
type Scanner struct {
	statuses *status.Store
	paths    config.Paths
	ttl      time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	entries   []Entry
	scannedAt time.Time

	now func() time.Time
}

// NewScanner wires a scanner over the status store. ttl bounds how long the
// report from the most recent scan stays visible.
func NewScanner(statuses *status.Store, paths config.Paths, ttl time.Duration, logger *slog.Logger) *Scanner {
	return &Scanner{
		statuses: statuses,
		paths:    paths,
		ttl:      ttl,
		logger:   logging.NewComponentLogger(logger, "recovery"),
		now:      time.Now,
	}
}

// Scan examines every persisted status record. Records in a clean terminal
// state stay; processing, error, and undecodable records are deleted along
// with any partial result artifact. Each wiped job appears once in the
// returned report, sorted by identifier.
func (s *Scanner) Scan(ctx context.Context) ([]Entry, error) {
	ids, err := s.statuses.List()
	if err != nil {
		return nil, fmt.Errorf("recovery: list status records: %w", err)
	}

	var entries []Entry
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.statuses.Read(id)
		if err != nil {
			return nil, fmt.Errorf("recovery: read status for %q: %w", id, err)
		}
		if rec == nil || rec.State.Terminal() {
			continue
		}

		if err := s.wipe(id); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			ID:          id,
			PriorState:  rec.State,
			RecoveredAt: status.Now(),
		})
		s.logger.Info("wiped stale job state",
			logging.String(logging.FieldJobID, id),
			logging.String("prior_state", string(rec.State)))
	}

	s.mu.Lock()
	s.entries = entries
	s.scannedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("recovery scan finished",
		logging.Int("examined", len(ids)),
		logging.Int("wiped", len(entries)))
	return entries, nil
}

// Report returns the entries from the most recent scan, or nil once the
// retention interval has lapsed.
func (s *Scanner) Report() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scannedAt.IsZero() || s.now().Sub(s.scannedAt) > s.ttl {
		return nil
	}
	cp := make([]Entry, len(s.entries))
	copy(cp, s.entries)
	return cp
}

func (s *Scanner) wipe(id string) error {
	if err := s.statuses.Delete(id); err != nil {
		return fmt.Errorf("recovery: delete status for %q: %w", id, err)
	}
	result := jobfiles.ResultPath(s.paths, id)
	if err := os.Remove(result); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("recovery: delete result for %q: %w", id, err)
	}
	return nil
}
