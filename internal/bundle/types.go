// Package bundle implements the Knowledge Bundle: a staleness-guarded,
// normalized, content-addressed snapshot of Knowledge for a scope,
// wrapped in an in-toto attestation envelope (spec §4.10).
package bundle

// FileEntry is one file staged for inclusion before normalization.
type FileEntry struct {
	LogicalPath string // path relative to the bundle content/ root
	SourcePath  string // absolute path read from disk
}

// ManifestRecord is one manifest.json row (spec §4.10 step 5).
type ManifestRecord struct {
	LogicalPath string `json:"logical_path"`
	SourcePath  string `json:"source_path"`
	SHA256      string `json:"sha256"`
	Bytes       int    `json:"bytes"`
}

// Manifest is manifest.json.
type Manifest struct {
	Version int              `json:"version"`
	Scope   string           `json:"scope"`
	Files   []ManifestRecord `json:"files"`
}

// EvidenceExcerpt is one row of the derived evidence bundle (repo scope
// only, spec §4.10 step 4).
type EvidenceExcerpt struct {
	EvidenceID string `json:"evidence_id"`
	FilePath   string `json:"file_path"`
	CommitSHA  string `json:"commit_sha"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Excerpt    string `json:"excerpt"`
}

// EvidenceBundle is bundle/evidence_bundle.json.
type EvidenceBundle struct {
	Version  int               `json:"version"`
	RepoID   string            `json:"repo_id"`
	Evidence []EvidenceExcerpt `json:"evidence"`
}

// BundleMeta is BUNDLE.json, the human/machine-facing summary of a
// built bundle (distinct from manifest.json, which exists for hashing).
type BundleMeta struct {
	Version       int    `json:"version"`
	BundleID      string `json:"bundle_id"`
	Scope         string `json:"scope"`
	ManifestSHA256 string `json:"manifest_sha256"`
	FileCount     int    `json:"file_count"`
	GeneratedAt   string `json:"generated_at"`
}

// LatestPointer is bundles/LATEST.json.
type LatestPointer struct {
	Version        int    `json:"version"`
	BundleID       string `json:"bundle_id"`
	ManifestSHA256 string `json:"manifest_sha256"`
	ScopeRelPath   string `json:"scope_rel_path"`
	UpdatedAt      string `json:"updated_at"`
}
