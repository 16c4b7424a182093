package bundle

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// scopeDir maps a scope string to its directory segment under
// <lane_a>/bundles/ (spec §6: "system|repo/<id>").
func scopeDir(scope string) string {
	if repoID, ok := strings.CutPrefix(scope, "repo:"); ok {
		return filepath.Join("repo", repoID)
	}
	return "system"
}

// WriteBundle writes the full bundle directory tree under
// <bundlesRoot>/<scopeDir>/<bundleID>/: manifest.json, BUNDLE.json,
// BUNDLE.md, the attestation statement, and each normalized file (spec
// §4.10 step 6). A logical_path rooted at "bundle/" (the derived
// evidence bundle) is written directly under the bundle directory;
// every other logical_path is written under content/<logical_path>.
// bundlesRoot must already be sandbox-checked by the caller against
// <lane_a>/bundles.
func WriteBundle(bundlesRoot, scope, bundleID, manifestSHA string, canonicalManifest []byte, meta BundleMeta, stmt BundleStatement, normalized []NormalizedFile, now time.Time) (string, error) {
	outDir := filepath.Join(bundlesRoot, scopeDir(scope), bundleID)

	if err := fsatomic.WriteFile(filepath.Join(outDir, "manifest.json"), canonicalManifest); err != nil {
		return "", err
	}
	metaData, err := fsatomic.Canonicalize(meta, filepath.Join(outDir, "BUNDLE.json"))
	if err != nil {
		return "", err
	}
	if err := fsatomic.WriteFile(filepath.Join(outDir, "BUNDLE.json"), metaData); err != nil {
		return "", err
	}
	if err := fsatomic.WriteFile(filepath.Join(outDir, "BUNDLE.md"), []byte(RenderBundleMD(meta))); err != nil {
		return "", err
	}
	if err := WriteStatement(filepath.Join(outDir, "attestation.json"), stmt); err != nil {
		return "", err
	}
	for _, f := range normalized {
		base := outDir
		if !strings.HasPrefix(f.LogicalPath, "bundle/") {
			base = filepath.Join(outDir, "content")
		}
		if err := fsatomic.WriteFile(filepath.Join(base, filepath.FromSlash(f.LogicalPath)), f.Data); err != nil {
			return "", err
		}
	}
	return outDir, nil
}

// UpdateLatest updates bundles/LATEST.json atomically, recording the
// new bundle's identity (spec §4.10 step 6).
func UpdateLatest(bundlesRoot, scope, bundleID, manifestSHA string, now time.Time) error {
	ptr := LatestPointer{
		Version: 1, BundleID: bundleID, ManifestSHA256: manifestSHA,
		ScopeRelPath: filepath.Join(scopeDir(scope), bundleID),
		UpdatedAt:    now.UTC().Format(time.RFC3339),
	}
	path := filepath.Join(bundlesRoot, "LATEST.json")
	data, err := fsatomic.Canonicalize(ptr, path)
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(path, data)
}

// RenderBundleMD renders BUNDLE.md, the human-facing summary.
func RenderBundleMD(meta BundleMeta) string {
	var b strings.Builder
	b.WriteString("# Knowledge bundle\n\n")
	b.WriteString("Scope: " + meta.Scope + "\n")
	b.WriteString("Bundle id: " + meta.BundleID + "\n")
	b.WriteString("Manifest sha256: " + meta.ManifestSHA256 + "\n")
	b.WriteString("Files: " + strconv.Itoa(meta.FileCount) + "\n")
	b.WriteString("Generated at: " + meta.GeneratedAt + "\n")
	return b.String()
}
