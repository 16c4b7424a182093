package eventlog

import (
	"path/filepath"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// WriteSummary writes the events summary to both of its required
// locations atomically (spec §4.11: lane_a events/summary mirror plus
// the knowledge_root top-level copy).
func WriteSummary(laneAPath, knowledgeRootPath string, s Summary) error {
	data, err := fsatomic.Canonicalize(s, laneAPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(laneAPath, data); err != nil {
		return err
	}
	return fsatomic.WriteFile(knowledgeRootPath, data)
}

// DefaultSummaryPaths mirrors the on-disk layout convention from spec §6.
func DefaultSummaryPaths(laneADir, knowledgeRoot string) (laneAPath, knowledgeRootPath string) {
	return filepath.Join(laneADir, "events", "summary", "events-summary.json"),
		filepath.Join(knowledgeRoot, "events_summary.json")
}
