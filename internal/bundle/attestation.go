package bundle

import (
	"encoding/json"
	"fmt"
	"time"

	intoto "github.com/in-toto/in-toto-golang/in_toto"
	"github.com/in-toto/in-toto-golang/in_toto/slsa_provenance/common"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// PredicateTypeKnowledgeBundle identifies the attestation predicate this
// module attaches to every built bundle (spec §4.10 reproducibility
// invariant: the bundle_id/manifest_sha pair is the verifiable claim).
const PredicateTypeKnowledgeBundle = "https://knowledgectl.dev/attestation/knowledge-bundle/v1"

// BundlePredicate is the attestation payload for a Knowledge Bundle.
type BundlePredicate struct {
	Scope          string `json:"scope"`
	BundleID       string `json:"bundle_id"`
	ManifestSHA256 string `json:"manifest_sha256"`
	FileCount      int    `json:"file_count"`
	GeneratedAt    string `json:"generated_at"`
}

// BundleStatement is the in-toto statement wrapping a BundlePredicate.
type BundleStatement struct {
	intoto.StatementHeader
	Predicate BundlePredicate `json:"predicate"`
}

// NewBundleStatement builds the attestation envelope for a built
// bundle, one subject per manifest file keyed by its sha256 digest.
func NewBundleStatement(m Manifest, bundleID, manifestSHA string, now time.Time) BundleStatement {
	subjects := make([]intoto.Subject, 0, len(m.Files))
	for _, f := range m.Files {
		subjects = append(subjects, intoto.Subject{
			Name:   f.LogicalPath,
			Digest: common.DigestSet{"sha256": f.SHA256},
		})
	}
	return BundleStatement{
		StatementHeader: intoto.StatementHeader{
			Type:          intoto.StatementInTotoV01,
			PredicateType: PredicateTypeKnowledgeBundle,
			Subject:       subjects,
		},
		Predicate: BundlePredicate{
			Scope: m.Scope, BundleID: bundleID, ManifestSHA256: manifestSHA,
			FileCount: len(m.Files), GeneratedAt: now.UTC().Format(time.RFC3339),
		},
	}
}

// WriteStatement writes the attestation statement as indented JSON
// (matching the teacher's plain-JSON attestation writer — these files
// are consumed by external attestation tooling, not by this module's
// own canonicalizer).
func WriteStatement(path string, stmt BundleStatement) error {
	b, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal attestation: %w", err)
	}
	b = append(b, '\n')
	return fsatomic.WriteFile(path, b)
}
