package eventlog

import (
	"context"

	"github.com/deliverygov/knowledgectl/internal/gitx"
)

// GitHubPathLister is the narrow surface LogMergeEvent's affected_paths
// derivation needs from a GitHub API client: list files changed by a
// merged pull request. Callers outside this package supply the concrete
// implementation; keeping it an interface here avoids an eventlog->gh
// client import and lets tests substitute a fake.
type GitHubPathLister interface {
	ListChangedFiles(ctx context.Context, owner, repo string, prNumber int) ([]string, error)
}

// AffectedPathsSource records which strategy actually produced the
// affected-paths list, for audit/debugging.
type AffectedPathsSource string

const (
	SourceGitHubAPI AffectedPathsSource = "github_api"
	SourceDiffTree  AffectedPathsSource = "diff_tree"
	SourceNone      AffectedPathsSource = "none"
)

// DeriveAffectedPaths implements the best-effort fallback chain (spec
// §4.11): prefer the GitHub API listing for the PR, fall back to
// `git diff-tree --name-only <sha>^ <sha>`, and return an empty list
// with source "none" when neither is available.
func DeriveAffectedPaths(ctx context.Context, gh GitHubPathLister, adapter *gitx.Adapter, owner, repo string, prNumber int, mergeCommitSHA string) ([]string, AffectedPathsSource) {
	if gh != nil {
		if paths, err := gh.ListChangedFiles(ctx, owner, repo, prNumber); err == nil {
			return normalizeAffectedPaths(paths), SourceGitHubAPI
		}
	}
	if adapter != nil {
		if paths, err := adapter.DiffTreeNames(ctx, mergeCommitSHA); err == nil {
			return normalizeAffectedPaths(paths), SourceDiffTree
		}
	}
	return nil, SourceNone
}
