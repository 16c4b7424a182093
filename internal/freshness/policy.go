package freshness

import (
	"sort"
	"time"

	"github.com/deliverygov/knowledgectl/internal/config"
)

// RepoCheckInput is everything the policy needs to classify one repo
// (spec §4.8 repo-scope reasons (a)-(c)).
type RepoCheckInput struct {
	RepoID                  string
	CurrentHeadSHA          string
	LastScanCommitSHA       string
	ScannedAt               time.Time
	MergeEventTimestamps    []time.Time // events with timestamp > ScannedAt
	MismatchedFingerprints  []string
}

// RepoResult is one repo's classification.
type RepoResult struct {
	RepoID    string
	Stale     bool
	HardStale bool
	Reasons   []string
}

// CheckRepo classifies one repo. Grace resolution (Open Question #1):
// a stale reason is escalated to hard_stale once the time since the
// last scan exceeds cfg.GraceWindow, or once more merge events have
// landed than cfg.MaxMergeEvents — whichever threshold the concrete
// reason can be measured against.
//
// Every reason is prefixed "<repo_id>:" (spec §8 scenario 2:
// reasons:["repo-a:merge_after_last_refresh"]) so a reader of the
// system-scope union in AggregateSystem can still tell which repo a
// reason came from.
func CheckRepo(in RepoCheckInput, cfg config.FreshnessConfig, now time.Time) RepoResult {
	var reasons []string
	headMoved := in.CurrentHeadSHA != "" && in.LastScanCommitSHA != "" && in.CurrentHeadSHA != in.LastScanCommitSHA
	if headMoved {
		reasons = append(reasons, in.RepoID+":head_moved")
	}
	if len(in.MergeEventTimestamps) > 0 {
		reasons = append(reasons, in.RepoID+":merge_after_last_refresh")
	}
	if len(in.MismatchedFingerprints) > 0 {
		reasons = append(reasons, in.RepoID+":fingerprint_mismatch")
	}

	if len(reasons) == 0 {
		return RepoResult{RepoID: in.RepoID}
	}

	timeSinceScan := now.Sub(in.ScannedAt)
	hard := timeSinceScan > cfg.GraceWindow || len(in.MergeEventTimestamps) > cfg.MaxMergeEvents
	return RepoResult{RepoID: in.RepoID, Stale: true, HardStale: hard, Reasons: reasons}
}

// AggregateSystem combines per-repo results into the system-scope view
// (spec §4.8: "stale iff any active repo is stale; hard if any is
// hard").
func AggregateSystem(results []RepoResult, now time.Time) Staleness {
	s := Staleness{Version: 1, Scope: "system", GeneratedAt: now.UTC().Format(time.RFC3339)}
	reasonSet := make(map[string]struct{})
	for _, r := range results {
		if !r.Stale {
			continue
		}
		s.Stale = true
		if r.HardStale {
			s.HardStale = true
		}
		s.StaleRepos = append(s.StaleRepos, r.RepoID)
		for _, reason := range r.Reasons {
			reasonSet[reason] = struct{}{}
		}
	}
	sort.Strings(s.StaleRepos)
	for reason := range reasonSet {
		s.Reasons = append(s.Reasons, reason)
	}
	sort.Strings(s.Reasons)
	return s
}

// ForRepo produces the repo-scope Staleness view for a single result.
func ForRepo(r RepoResult, now time.Time) Staleness {
	s := Staleness{
		Version: 1, Scope: "repo:" + r.RepoID, Stale: r.Stale, HardStale: r.HardStale,
		Reasons: r.Reasons, GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	if r.Stale {
		s.StaleRepos = []string{r.RepoID}
	}
	return s
}
