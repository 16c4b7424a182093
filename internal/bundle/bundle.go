package bundle

import (
	"context"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/fsatomic"
	"github.com/deliverygov/knowledgectl/internal/freshness"
	"github.com/deliverygov/knowledgectl/internal/gitx"
)

// BuildInput gathers everything Build needs for one scope.
type BuildInput struct {
	Scope              string
	KnowledgeRoot      string
	BundlesRoot        string // <lane_a_root>/bundles
	DecisionPacketsDir string
	Staleness          freshness.Staleness
	StalenessOverride  freshness.Override
	EvidenceRefsPath   string // non-empty for repo scope only
	EvidenceRepoID     string
	GitAdapter         *gitx.Adapter
}

// Result is what Build reports back for a successfully built bundle.
type Result struct {
	BundleID       string
	ManifestSHA256 string
	OutDir         string
	Override       *freshness.Outcome
}

// Build implements the Knowledge Bundle pipeline end to end (spec
// §4.10): staleness guard, include list, normalization, optional
// derived evidence bundle, manifest + bundle_id, attestation envelope,
// directory write, LATEST.json update.
func Build(ctx context.Context, in BuildInput, now time.Time) (*Result, error) {
	outcome, err := freshness.Guard(in.DecisionPacketsDir, in.Staleness, "bundle", in.StalenessOverride, now)
	if err != nil {
		return nil, err
	}

	entries, err := BuildIncludeList(in.KnowledgeRoot, in.Scope)
	if err != nil {
		return nil, err
	}
	dpEntries, err := IncludeOpenDecisionPackets(in.KnowledgeRoot, in.DecisionPacketsDir, in.Scope)
	if err != nil {
		return nil, err
	}
	entries = dedupeSorted(append(entries, dpEntries...))

	canonicalizeFn := func(decoded any, logicalPath string) ([]byte, error) {
		return fsatomic.Canonicalize(decoded, logicalPath)
	}
	normalized := make([]NormalizedFile, 0, len(entries))
	for _, e := range entries {
		data, err := NormalizeFile(e, canonicalizeFn)
		if err != nil {
			return nil, errkit.New(errkit.ErrEvidenceMissing, err, "failed normalizing "+e.LogicalPath)
		}
		normalized = append(normalized, NormalizedFile{LogicalPath: e.LogicalPath, SourcePath: e.SourcePath, Data: data})
	}

	if repoID, ok := strings.CutPrefix(in.Scope, "repo:"); ok && in.EvidenceRefsPath != "" {
		eb, err := BuildEvidenceBundle(ctx, in.GitAdapter, in.EvidenceRefsPath, repoID)
		if err != nil {
			return nil, err
		}
		evidenceData, err := fsatomic.Canonicalize(eb, "evidence_bundle.json")
		if err != nil {
			return nil, err
		}
		// Recorded in the manifest under its own logical_path but written
		// to bundle/evidence_bundle.json, not content/ (spec §4.10 step 4).
		normalized = append(normalized, NormalizedFile{LogicalPath: "bundle/evidence_bundle.json", Data: evidenceData})
	}

	manifest := BuildManifest(in.Scope, normalized)
	manifestSHA, bundleID, canonicalManifest, err := ManifestSHAAndBundleID(manifest)
	if err != nil {
		return nil, err
	}

	meta := BundleMeta{
		Version: 1, BundleID: bundleID, Scope: in.Scope, ManifestSHA256: manifestSHA,
		FileCount: len(manifest.Files), GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	stmt := NewBundleStatement(manifest, bundleID, manifestSHA, now)

	outDir, err := WriteBundle(in.BundlesRoot, in.Scope, bundleID, manifestSHA, canonicalManifest, meta, stmt, normalized, now)
	if err != nil {
		return nil, err
	}
	if err := UpdateLatest(in.BundlesRoot, in.Scope, bundleID, manifestSHA, now); err != nil {
		return nil, err
	}

	return &Result{BundleID: bundleID, ManifestSHA256: manifestSHA, OutDir: outDir, Override: outcome}, nil
}
