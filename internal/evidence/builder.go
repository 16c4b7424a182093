package evidence

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

// Extractor identifies the extraction method recorded on every ref
// this package produces.
const Extractor = "show_file_at_ref"

const maxEvidenceLines = 200
const sampleCap = 50

// CollectPaths builds the sorted-unique candidate path list from a
// RepoIndex and RepoFingerprints (spec §4.5 "Collect paths"), sampling
// at most 50 of routes_controllers/events_topics/migrations each. Paths
// failing sanitization (absolute, traversal, backslash) are dropped
// rather than silently kept.
func CollectPaths(idx *repoindex.RepoIndex, fp *repoindex.RepoFingerprints) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if !sanePath(path) {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, p := range idx.Entrypoints {
		add(p)
	}
	for _, h := range idx.Hotspots {
		add(h.FilePath)
	}
	for _, p := range idx.APISurface.OpenAPIFiles {
		add(p)
	}
	for _, p := range capped(idx.APISurface.RoutesControllers, sampleCap) {
		add(p)
	}
	for _, p := range capped(idx.APISurface.EventsTopics, sampleCap) {
		add(p)
	}
	for _, p := range capped(idx.MigrationsSchema, sampleCap) {
		add(p)
	}
	for _, p := range idx.BuildCommands.EvidenceFiles {
		add(p)
	}
	for _, d := range idx.CrossRepoDependencies {
		for _, p := range d.EvidenceRefs {
			add(p)
		}
	}
	for path := range idx.Fingerprints {
		add(path)
	}
	for _, f := range fp.Files {
		add(f.Path)
	}

	sort.Strings(out)
	return out
}

func capped(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

func sanePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	if strings.Contains(path, "..") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// BuildRefs reads every path at ref and produces one Ref per path,
// sorted by file_path (spec §4.5 "Build refs"). A single unreadable
// path fails the whole build, guaranteeing referential integrity for
// every fact that will cite this evidence set.
func BuildRefs(ctx context.Context, adapter *gitx.Adapter, repoID, ref, commitSHA string, paths []string, now time.Time) ([]Ref, error) {
	capturedAt := now.UTC().Format(time.RFC3339)
	refs := make([]Ref, 0, len(paths))
	for _, path := range paths {
		ok, content, err := adapter.ShowFileAtRef(ctx, ref, path)
		if err != nil || !ok {
			return nil, errkit.New(errkit.ErrEvidenceMissing, err,
				fmt.Sprintf("read %q at %s for evidence", path, ref)).WithContext("repo_id", repoID)
		}
		lineCount := countLines(content)
		endLine := lineCount
		if endLine > maxEvidenceLines {
			endLine = maxEvidenceLines
		}
		if endLine < 1 {
			endLine = 1
		}
		refs = append(refs, Ref{
			EvidenceID: refID(repoID, commitSHA, path, 1, endLine),
			RepoID:     repoID,
			FilePath:   path,
			CommitSHA:  commitSHA,
			StartLine:  1,
			EndLine:    endLine,
			Extractor:  Extractor,
			CapturedAt: capturedAt,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].FilePath < refs[j].FilePath })
	return refs, nil
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte("\n"))
	if !bytes.HasSuffix(content, []byte("\n")) {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

func refID(repoID, commitSHA, path string, start, end int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\n%s\n%s\n%d:%d", repoID, commitSHA, path, start, end)))
	return "EVID_" + hex.EncodeToString(h[:])[:12]
}

// ByID indexes a ref slice by evidence_id for fact-citation validation.
func ByID(refs []Ref) map[string]Ref {
	m := make(map[string]Ref, len(refs))
	for _, r := range refs {
		m[r.EvidenceID] = r
	}
	return m
}

// NewFact builds a Fact whose evidence_ids are all drawn from known,
// returning an error naming the first unknown id otherwise (spec §4.5
// "Map facts"). fact_id is deterministic over prefix, claim, and the
// sorted evidence ids (spec §3 Fact).
func NewFact(prefix, claim string, evidenceIDs []string, known map[string]Ref) (Fact, error) {
	if len(evidenceIDs) == 0 {
		return Fact{}, errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("fact %q declares no evidence_ids", claim))
	}
	sorted := append([]string(nil), evidenceIDs...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if _, ok := known[id]; !ok {
			return Fact{}, errkit.New(errkit.ErrContractViolation, nil,
				fmt.Sprintf("fact %q cites unknown evidence id %q", claim, id))
		}
	}
	h := sha256.Sum256([]byte(prefix + "\n" + claim + "\n" + strings.Join(sorted, ",")))
	return Fact{
		FactID:      "F_" + hex.EncodeToString(h[:])[:10],
		Claim:       claim,
		EvidenceIDs: sorted,
	}, nil
}
