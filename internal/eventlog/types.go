// Package eventlog implements the append-only Event Log: per-repo merge
// events appended to UTC-named JSONL segments, a latest-per-repo summary,
// and durable per-consumer checkpoints (spec §4.11).
package eventlog

// PR carries the optional pull-request enrichment (spec §3 MergeEvent).
type PR struct {
	Number     int    `json:"number"`
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	URL        string `json:"url"`
	BaseBranch string `json:"base_branch"`
	HeadBranch string `json:"head_branch"`
}

// QAWaiver carries the optional QA-waiver enrichment.
type QAWaiver struct {
	Approver string `json:"approver"`
	Reason   string `json:"reason"`
	At       string `json:"at"`
}

// MergeEvent is one Event Log line (spec §3, §4.11).
type MergeEvent struct {
	Version       int      `json:"version"`
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	RepoID        string   `json:"repo_id"`
	PRNumber      int      `json:"pr_number"`
	MergeCommitSHA string  `json:"merge_commit_sha"`
	BaseBranch    string   `json:"base_branch"`
	AffectedPaths []string `json:"affected_paths"`
	Timestamp     string   `json:"timestamp"`

	WorkID       string    `json:"work_id,omitempty"`
	PR           *PR       `json:"pr,omitempty"`
	MergeSHA     string    `json:"merge_sha,omitempty"`
	ChangedPaths []string  `json:"changed_paths,omitempty"`
	Obligations  []string  `json:"obligations,omitempty"`
	RiskLevel    string    `json:"risk_level,omitempty"`
	QAWaiver     *QAWaiver `json:"qa_waiver,omitempty"`
}

// Checkpoint is a durable per-consumer read position.
type Checkpoint struct {
	Version         int    `json:"version"`
	Consumer        string `json:"consumer"`
	LastReadSegment string `json:"last_read_segment"`
	LastReadOffset  int64  `json:"last_read_offset"`
	UpdatedAt       string `json:"updated_at"`
}

// RepoLatest is one entry in the events summary.
type RepoLatest struct {
	RepoID            string `json:"repo_id"`
	LatestMergeCommit string `json:"latest_merge_commit"`
	LatestPRNumber    int    `json:"latest_pr_number"`
	LatestTimestamp   string `json:"latest_timestamp"`
}

// Summary is the latest-per-repo rollup (spec §4.11).
type Summary struct {
	Version     int          `json:"version"`
	GeneratedAt string       `json:"generated_at"`
	MergeEvents []RepoLatest `json:"merge_events"`
}
