package filelock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lane-a-orchestrate.lock.json")
	h, err := Acquire(path, 30*60*1000, map[string]string{"op": "scan"})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("lock file missing after acquire: %v", statErr)
	}
	if err := h.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("lock file should be gone after release")
	}
}

func TestAcquireFailsWhileFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l.json")
	h1, err := Acquire(path, 30*60*1000, nil)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer h1.Release()

	if _, err := Acquire(path, 30*60*1000, nil); err == nil {
		t.Fatalf("expected second Acquire to fail while lock is fresh")
	}
}

func TestAcquireTakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l.json")
	h1, err := Acquire(path, 1, nil)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer func() { _ = h1 }()

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	h2, err := Acquire(path, 1, nil)
	if err != nil {
		t.Fatalf("expected stale takeover to succeed: %v", err)
	}
	if err := h2.Release(); err != nil {
		t.Fatalf("release after takeover: %v", err)
	}
}

func TestReleaseOfMissingFileIsSuccess(t *testing.T) {
	h := &Handle{path: filepath.Join(t.TempDir(), "gone.json")}
	if err := h.Release(); err != nil {
		t.Fatalf("release of missing file should succeed: %v", err)
	}
}
