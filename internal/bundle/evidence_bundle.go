package bundle

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/gitx"
)

type evidenceRefLine struct {
	EvidenceID string `json:"evidence_id"`
	RepoID     string `json:"repo_id"`
	FilePath   string `json:"file_path"`
	CommitSHA  string `json:"commit_sha"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
}

// BuildEvidenceBundle implements spec §4.10 step 4 (repo scope only):
// load evidence_refs.jsonl, reject any ref whose repo_id mismatches
// repoID, and slice each cited file at its ref down to [start,end].
func BuildEvidenceBundle(ctx context.Context, adapter *gitx.Adapter, evidenceRefsPath, repoID string) (EvidenceBundle, error) {
	f, err := os.Open(evidenceRefsPath)
	if err != nil {
		return EvidenceBundle{}, err
	}
	defer f.Close()

	eb := EvidenceBundle{Version: 1, RepoID: repoID}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ref evidenceRefLine
		if err := json.Unmarshal(raw, &ref); err != nil {
			return EvidenceBundle{}, errkit.New(errkit.ErrMalformed, err, "malformed evidence_refs.jsonl line")
		}
		if ref.RepoID != repoID {
			return EvidenceBundle{}, errkit.New(errkit.ErrContractViolation, nil,
				fmt.Sprintf("evidence ref %s belongs to repo %q, not bundle scope repo %q", ref.EvidenceID, ref.RepoID, repoID))
		}
		ok, content, err := adapter.ShowFileAtRef(ctx, ref.CommitSHA, ref.FilePath)
		if err != nil || !ok {
			return EvidenceBundle{}, errkit.New(errkit.ErrEvidenceMissing, err,
				fmt.Sprintf("cannot re-read evidence %s at %s:%s", ref.EvidenceID, ref.CommitSHA, ref.FilePath))
		}
		excerpt := sliceLines(content, ref.StartLine, ref.EndLine)
		eb.Evidence = append(eb.Evidence, EvidenceExcerpt{
			EvidenceID: ref.EvidenceID, FilePath: ref.FilePath, CommitSHA: ref.CommitSHA,
			StartLine: ref.StartLine, EndLine: ref.EndLine, Excerpt: excerpt,
		})
	}
	if err := scanner.Err(); err != nil {
		return EvidenceBundle{}, err
	}
	return eb, nil
}

func sliceLines(content []byte, start, end int) string {
	lines := strings.Split(string(content), "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end || start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
