// Package knowledgescan runs the per-repo Knowledge Scan (spec §4.6):
// validates index freshness against the current ref, builds evidence,
// derives facts and unknowns by pattern rule, and optionally
// cross-loads a sibling project's knowledge bundle summary.
package knowledgescan

import "github.com/deliverygov/knowledgectl/internal/evidence"

// ExternalKnowledge records one cross-project load (spec §4.6 step 8).
type ExternalKnowledge struct {
	ProjectCode string `json:"project_code"`
	RepoID      string `json:"repo_id"`
	BundleID    string `json:"bundle_id"`
	Path        string `json:"path"`
	LoadedAt    string `json:"loaded_at"`
}

// Unknown is a natural-language gap citing the evidence it is derived
// alongside (spec §4.6 step 6).
type Unknown struct {
	Text       string `json:"text"`
	EvidenceID string `json:"evidence_id"`
}

// Coverage reports how much of the repo's fingerprinted surface made
// it into evidence.
type Coverage struct {
	FilesSeen    int `json:"files_seen"`
	FilesIndexed int `json:"files_indexed"`
}

// Scan is scan.json (spec §3 KnowledgeScan).
type Scan struct {
	Version           int                 `json:"version"`
	RepoID            string              `json:"repo_id"`
	ScannedAt         string              `json:"scanned_at"`
	ScanVersion       int64               `json:"scan_version"`
	ExternalKnowledge []ExternalKnowledge `json:"external_knowledge"`
	Facts             []evidence.Fact     `json:"facts"`
	Unknowns          []Unknown           `json:"unknowns"`
	Contradictions    []string            `json:"contradictions"`
	Coverage          Coverage            `json:"coverage"`
}
