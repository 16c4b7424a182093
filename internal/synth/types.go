// Package synth rolls per-repo Knowledge Scans into the system
// Integration view and a gaps file (spec §4.7).
package synth

// InputRef records one contributing scan.
type InputRef struct {
	RepoID      string `json:"repo_id"`
	ScannedAt   string `json:"scanned_at"`
	ScanVersion int64  `json:"scan_version"`
}

// RepoIntegration summarizes one repo's contribution to the system view.
type RepoIntegration struct {
	RepoID            string   `json:"repo_id"`
	Entrypoints       []string `json:"entrypoints"`
	APIContractFiles  []string `json:"api_contract_files"`
	InfraFiles        []string `json:"infra_files"`
}

// IntegrationMap wraps the per-repo integration list.
type IntegrationMap struct {
	Repos []RepoIntegration `json:"repos"`
}

// Integration is integration.json (spec §3 Integration (system)).
type Integration struct {
	Version            int             `json:"version"`
	Scope              string          `json:"scope"`
	GeneratedAt        string          `json:"generated_at"`
	Inputs             []InputRef      `json:"inputs"`
	IntegrationMap     IntegrationMap  `json:"integration_map"`
	CrossRepoContracts []string        `json:"cross_repo_contracts"`
	KnownUnknowns      []string        `json:"known_unknowns"`
}

// Gap is one system-scope gap.
type Gap struct {
	RepoID  string `json:"repo_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Gaps is gaps.json.
type Gaps struct {
	Version     int    `json:"version"`
	Scope       string `json:"scope"`
	GeneratedAt string `json:"generated_at"`
	Gaps        []Gap  `json:"gaps"`
}
