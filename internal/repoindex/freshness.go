package repoindex

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/deliverygov/knowledgectl/internal/gitx"
)

// FindMismatches recomputes sha256 for every fingerprinted path and
// returns the sorted list of paths whose content no longer matches
// (spec §4.8 repo-scope staleness reason (c)). Unlike the scan's
// freshness check, this does not fail closed on the first mismatch —
// the freshness policy needs the full picture to report reasons.
func FindMismatches(ctx context.Context, adapter *gitx.Adapter, idx *RepoIndex) ([]string, error) {
	var paths []string
	for p := range idx.Fingerprints {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var mismatched []string
	for _, path := range paths {
		ok, content, err := adapter.ShowFileAtRef(ctx, idx.Ref, path)
		if err != nil || !ok {
			return nil, fmt.Errorf("re-read %q at %s: %w", path, idx.Ref, err)
		}
		got := fmt.Sprintf("%x", sha256.Sum256(content))
		if got != idx.Fingerprints[path] {
			mismatched = append(mismatched, path)
		}
	}
	return mismatched, nil
}
