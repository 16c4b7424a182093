// Package fsatomic provides the atomic-write, canonical-JSON, path-sandbox
// primitives every Lane A writer is built on (spec §4.1). All bundle and
// knowledge-document writes in this module funnel through WriteFile and
// Canonicalize so that a crash never leaves a partial file and repeated
// runs over unchanged input hash identically.
package fsatomic

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
)

var tmpCounter uint64

// WriteFile writes data to absPath atomically: it writes to a sibling
// temp file and renames over the target, creating parent directories
// first. No partial file is ever observable at absPath.
func WriteFile(absPath string, data []byte) error {
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir %s: %w", dir, err)
	}
	counter := atomic.AddUint64(&tmpCounter, 1)
	tmpPath := absPath + ".tmp." + strconv.Itoa(os.Getpid()) + "." + strconv.FormatUint(counter, 16)
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s to %s: %w", tmpPath, absPath, err)
	}
	return nil
}

// WriteFileIfChanged writes data only if it differs from what's already
// at absPath, returning whether a write happened, for callers that want
// to report an idempotent no-op.
func WriteFileIfChanged(absPath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(absPath)
	if err == nil && string(existing) == string(data) {
		return false, nil
	}
	if err := WriteFile(absPath, data); err != nil {
		return false, err
	}
	return true, nil
}
