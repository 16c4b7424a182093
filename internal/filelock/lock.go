// Package filelock implements the durable-file mutex from spec §4.1: a
// lock represented by a file whose existence is the lock state, with
// stale-takeover when the holder is presumed dead.
package filelock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Metadata describes a lock's holder, written as the lock file body.
type Metadata struct {
	PID       int               `json:"pid"`
	Hostname  string            `json:"hostname"`
	StartedAt string            `json:"started_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Handle represents a held lock; call Release to give it up.
type Handle struct {
	path string
}

// Acquire creates path exclusively. If it already exists and its mtime
// is older than staleMs, the holder is presumed dead: Acquire unlinks it
// and retries exactly once. Any other failure (including a fresh
// competing lock) is returned as an error.
func Acquire(path string, staleMs int64, metadata map[string]string) (*Handle, error) {
	h, err := tryAcquire(path, metadata)
	if err == nil {
		return h, nil
	}
	if !os.IsExist(err) {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			// Released between our failed create and this stat; retry once.
			return tryAcquireOrFail(path, metadata)
		}
		return nil, fmt.Errorf("stat existing lock %s: %w", path, statErr)
	}
	age := time.Since(info.ModTime())
	if age.Milliseconds() <= staleMs {
		return nil, fmt.Errorf("lock %s held (age %s, stale threshold %dms)", path, age, staleMs)
	}
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("unlink stale lock %s: %w", path, rmErr)
	}
	return tryAcquireOrFail(path, metadata)
}

func tryAcquireOrFail(path string, metadata map[string]string) (*Handle, error) {
	h, err := tryAcquire(path, metadata)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s after stale takeover: %w", path, err)
	}
	return h, nil
}

func tryAcquire(path string, metadata map[string]string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hostname, _ := os.Hostname()
	body := Metadata{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Metadata:  metadata,
	}
	data, mErr := json.MarshalIndent(body, "", "  ")
	if mErr != nil {
		return nil, fmt.Errorf("marshal lock metadata: %w", mErr)
	}
	if _, wErr := f.Write(data); wErr != nil {
		return nil, fmt.Errorf("write lock metadata: %w", wErr)
	}
	return &Handle{path: path}, nil
}

// Release removes the lock file. A missing file is treated as success,
// since the desired post-condition (no lock held) already holds.
func (h *Handle) Release() error {
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock %s: %w", h.path, err)
	}
	return nil
}
