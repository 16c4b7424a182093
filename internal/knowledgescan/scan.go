package knowledgescan

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/evidence"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/pathrules"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

// Run executes the per-repo scan algorithm (spec §4.6 steps 2-7) over
// an already-loaded RepoIndex/RepoFingerprints pair. Loading (and
// failing with missing_input if absent) is the caller's job via
// repoindex.LoadIndex/LoadFingerprints, matching step 1's "abort if
// either is absent" before any scan-specific work begins.
func Run(ctx context.Context, adapter *gitx.Adapter, idx *repoindex.RepoIndex, fp *repoindex.RepoFingerprints, now time.Time) (*Scan, []evidence.Ref, error) {
	currentSHA, err := adapter.RevListOne(ctx, idx.Ref)
	if err != nil {
		return nil, nil, errkit.New(errkit.ErrGitFailed, err, "resolve current head").WithContext("repo_id", idx.RepoID)
	}

	if err := checkFreshness(ctx, adapter, idx); err != nil {
		return nil, nil, err
	}

	paths := evidence.CollectPaths(idx, fp)
	refs, err := evidence.BuildRefs(ctx, adapter, idx.RepoID, idx.Ref, currentSHA, paths, now)
	if err != nil {
		return nil, nil, err
	}
	known := evidence.ByID(refs)

	evidenceIDByPath := make(map[string]string, len(refs))
	for _, r := range refs {
		evidenceIDByPath[r.FilePath] = r.EvidenceID
	}

	facts, err := deriveFacts(idx, evidenceIDByPath, known)
	if err != nil {
		return nil, nil, err
	}

	unknowns := deriveUnknowns(idx, refs, facts)

	externalKnowledge := []ExternalKnowledge{}
	for _, dep := range idx.Dependencies.DependsOn {
		ek, err := LoadExternalKnowledge(dep, now)
		if err != nil {
			return nil, nil, err
		}
		externalKnowledge = append(externalKnowledge, ek)
	}

	sortedEvidenceIDs := make([]string, len(refs))
	for i, r := range refs {
		sortedEvidenceIDs[i] = r.EvidenceID
	}
	sort.Strings(sortedEvidenceIDs)

	scan := &Scan{
		Version:           1,
		RepoID:            idx.RepoID,
		ScannedAt:         now.UTC().Format(time.RFC3339),
		ScanVersion:       scanVersion(idx.RepoID, idx.Version, sortedEvidenceIDs),
		ExternalKnowledge: externalKnowledge,
		Facts:             facts,
		Unknowns:          unknowns,
		Contradictions:    []string{},
		Coverage:          Coverage{FilesSeen: len(idx.Fingerprints), FilesIndexed: len(refs)},
	}
	return scan, refs, nil
}

// checkFreshness recomputes sha256 for every fingerprinted path and
// fails with index_out_of_date on the first mismatch (spec §4.6 step
// 3), preventing evidence being built over byte ranges that have
// since moved.
func checkFreshness(ctx context.Context, adapter *gitx.Adapter, idx *repoindex.RepoIndex) error {
	paths := make([]string, 0, len(idx.Fingerprints))
	for p := range idx.Fingerprints {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, path := range paths {
		want := idx.Fingerprints[path]
		ok, content, err := adapter.ShowFileAtRef(ctx, idx.Ref, path)
		if err != nil || !ok {
			return errkit.New(errkit.ErrEvidenceMissing, err,
				fmt.Sprintf("re-read fingerprinted path %q at %s", path, idx.Ref)).WithContext("repo_id", idx.RepoID)
		}
		got := fmt.Sprintf("%x", sha256.Sum256(content))
		if got != want {
			return errkit.New(errkit.ErrIndexOutOfDate, nil,
				fmt.Sprintf("fingerprint mismatch for %q: index has %s, ref has %s; re-run the indexer", path, want, got)).
				WithContext("repo_id", idx.RepoID)
		}
	}
	return nil
}

// scanVersion derives a deterministic integer from (repo_id,
// repoIndex.version, sorted evidence ids) (spec §3 KnowledgeScan). The
// pathological empty-evidence case always produces 1, for monotonicity
// with a freshly-initialized scan (spec §9 Open Questions).
func scanVersion(repoID string, repoIndexVersion int, sortedEvidenceIDs []string) int64 {
	if len(sortedEvidenceIDs) == 0 {
		return 1
	}
	h := sha256.New()
	h.Write([]byte(repoID))
	h.Write([]byte{0})
	h.Write([]byte(fmt.Sprintf("%d", repoIndexVersion)))
	for _, id := range sortedEvidenceIDs {
		h.Write([]byte{0})
		h.Write([]byte(id))
	}
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func deriveUnknowns(idx *repoindex.RepoIndex, refs []evidence.Ref, facts []evidence.Fact) []Unknown {
	if len(facts) == 0 || len(refs) == 0 {
		return []Unknown{}
	}
	hasContract := len(idx.APISurface.OpenAPIFiles) > 0
	for path := range idx.Fingerprints {
		if cat, ok := pathrules.Classify(path); ok && cat == pathrules.CategoryContract {
			hasContract = true
		}
	}
	if hasContract {
		return []Unknown{}
	}
	first := refs[0].EvidenceID
	return []Unknown{{
		Text:       "no API contract file (OpenAPI/GraphQL/proto) found in the fingerprinted surface",
		EvidenceID: first,
	}}
}
