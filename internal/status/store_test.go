package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	rec := Record{
		State:     StateProcessing,
		Progress:  20,
		Step:      "Completed Load Models",
		StartTime: Now(),
	}
	if err := store.Write("meeting", rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read("meeting")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.State != StateProcessing || got.Progress != 20 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.LastUpdated == 0 {
		t.Fatal("expected LastUpdated to be stamped")
	}
}

func TestReadAbsentReturnsNil(t *testing.T) {
	store := NewStore(t.TempDir())
	rec, err := store.Read("never-ran")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
	if store.Exists("never-ran") {
		t.Fatal("Exists should be false")
	}
}

func TestReadCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.WriteFile(store.Path("broken"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec, err := store.Read("broken")
	if err != nil {
		t.Fatalf("Read must not fail on corrupt content: %v", err)
	}
	if rec == nil || rec.State != StateCorrupt {
		t.Fatalf("expected StateCorrupt, got %+v", rec)
	}
}

func TestReadUnknownStateIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.WriteFile(store.Path("odd"), []byte(`{"status":"paused","progress":5}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	rec, err := store.Read("odd")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.State != StateCorrupt {
		t.Fatalf("expected StateCorrupt for unknown state, got %q", rec.State)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	for i := 0; i < 5; i++ {
		if err := store.Write("job", Record{State: StateProcessing, Progress: float64(i)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected exactly one file, got %v", names)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Write("gone", Record{State: StateStopped}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete("gone"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if store.Exists("gone") {
		t.Fatal("record should be gone")
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	for _, id := range []string{"beta", "alpha"} {
		if err := store.Write(id, Record{State: StateComplete, Progress: 100}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(ids, ",") != "alpha,beta" {
		t.Fatalf("List = %v", ids)
	}
}
