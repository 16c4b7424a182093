package knowledgescan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deliverygov/knowledgectl/internal/evidence"
	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// Write emits scan.json, evidence_refs.jsonl, and SCAN_REPORT.md
// atomically under dir (spec §4.6 step 7).
func Write(dir string, scan *Scan, refs []evidence.Ref) error {
	scanPath := filepath.Join(dir, "scan.json")
	scanData, err := fsatomic.Canonicalize(scan, scanPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(scanPath, scanData); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, r := range refs {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal evidence ref %s: %w", r.EvidenceID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := fsatomic.WriteFile(filepath.Join(dir, "evidence_refs.jsonl"), buf.Bytes()); err != nil {
		return err
	}

	return fsatomic.WriteFile(filepath.Join(dir, "SCAN_REPORT.md"), []byte(Render(scan)))
}

// Render produces the SCAN_REPORT.md companion, human-readable
// alongside the machine-read scan.json.
func Render(scan *Scan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan report: %s\n\n", scan.RepoID)
	fmt.Fprintf(&b, "Scanned at: %s\n", scan.ScannedAt)
	fmt.Fprintf(&b, "Scan version: %d\n\n", scan.ScanVersion)
	fmt.Fprintf(&b, "Coverage: %d/%d files indexed\n\n", scan.Coverage.FilesIndexed, scan.Coverage.FilesSeen)

	fmt.Fprintf(&b, "## Facts (%d)\n\n", len(scan.Facts))
	for _, f := range scan.Facts {
		fmt.Fprintf(&b, "- %s (%s)\n", f.Claim, f.FactID)
	}

	if len(scan.Unknowns) > 0 {
		b.WriteString("\n## Unknowns\n\n")
		for _, u := range scan.Unknowns {
			fmt.Fprintf(&b, "- %s (cites %s)\n", u.Text, u.EvidenceID)
		}
	}

	if len(scan.ExternalKnowledge) > 0 {
		b.WriteString("\n## External knowledge\n\n")
		for _, ek := range scan.ExternalKnowledge {
			fmt.Fprintf(&b, "- %s/%s: %s\n", ek.ProjectCode, ek.RepoID, ek.BundleID)
		}
	}
	return b.String()
}
