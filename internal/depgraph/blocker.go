package depgraph

import (
	"path/filepath"
	"time"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// Blocker is the DEPS_NOT_APPROVED.json document written when Gate
// refuses a scan (spec §4.4).
type Blocker struct {
	Version   int    `json:"version"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// WriteBlocker writes <lane_a_blockers>/DEPS_NOT_APPROVED.json
// atomically and canonically.
func WriteBlocker(laneABlockersDir string, override Override, now time.Time) error {
	b := Blocker{
		Version:   1,
		Reason:    "dependency graph override is not approved",
		Status:    string(override.Status),
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	data, err := fsatomic.Canonicalize(b, "")
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(filepath.Join(laneABlockersDir, "DEPS_NOT_APPROVED.json"), data)
}
