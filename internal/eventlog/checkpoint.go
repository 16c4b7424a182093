package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

func checkpointFileName(consumer string) string {
	safe := strings.NewReplacer("/", "-", ":", "-").Replace(consumer)
	return safe + ".json"
}

// LoadCheckpoint reads a consumer's durable read position, defaulting
// to the start of the log when none has been recorded yet.
func LoadCheckpoint(dir, consumer string) (Checkpoint, error) {
	path := filepath.Join(dir, checkpointFileName(consumer))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Checkpoint{Version: 1, Consumer: consumer}, nil
	}
	if err != nil {
		return Checkpoint{}, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, err
	}
	return cp, nil
}

// SaveCheckpoint persists a consumer's read position atomically.
func SaveCheckpoint(dir string, cp Checkpoint, now time.Time) error {
	cp.UpdatedAt = now.UTC().Format(time.RFC3339)
	path := filepath.Join(dir, checkpointFileName(cp.Consumer))
	data, err := fsatomic.Canonicalize(cp, path)
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(path, data)
}
