package bundle

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// NormalizedFile pairs a manifest record's logical identity with the
// normalized bytes that will land under content/<logical_path>.
type NormalizedFile struct {
	LogicalPath string
	SourcePath  string
	Data        []byte
}

// BuildManifest computes the manifest (spec §4.10 step 5): files sorted
// by logical_path, each with sha256/bytes over its normalized content.
func BuildManifest(scope string, files []NormalizedFile) Manifest {
	m := Manifest{Version: 1, Scope: scope}
	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		m.Files = append(m.Files, ManifestRecord{
			LogicalPath: f.LogicalPath, SourcePath: f.SourcePath,
			SHA256: hex.EncodeToString(sum[:]), Bytes: len(f.Data),
		})
	}
	return m
}

// ManifestSHAAndBundleID canonicalizes the manifest and derives
// manifest_sha / bundle_id = "sha256-" + manifest_sha (spec §4.10 step 5).
func ManifestSHAAndBundleID(m Manifest) (manifestSHA, bundleID string, canonical []byte, err error) {
	canonical, err = fsatomic.Canonicalize(m, "manifest.json")
	if err != nil {
		return "", "", nil, err
	}
	sum := sha256.Sum256(canonical)
	manifestSHA = hex.EncodeToString(sum[:])
	return manifestSHA, "sha256-" + manifestSHA, canonical, nil
}
