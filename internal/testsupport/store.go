package testsupport

import (
	"testing"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/status"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewStatusStore returns a status store rooted at the config's status dir.
func NewStatusStore(cfg *config.Config) *status.Store {
	return status.NewStore(cfg.Paths.StatusDir)
}
