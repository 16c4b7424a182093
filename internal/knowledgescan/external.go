package knowledgescan

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

// LoadExternalKnowledge cross-loads a sibling project's bundle summary
// for one declared dependency (spec §4.6 step 8). Any missing file
// fails with external_dependency_bundle_missing and names the
// in-target-project commands the operator must run.
func LoadExternalKnowledge(dep repoindex.DependsOn, now time.Time) (ExternalKnowledge, error) {
	required := []string{
		filepath.Join(dep.KnowledgeAbsPath, "evidence", "repos", dep.RepoID, "scan.json"),
		filepath.Join(dep.KnowledgeAbsPath, "evidence", "repos", dep.RepoID, "evidence_refs.jsonl"),
		filepath.Join(dep.KnowledgeAbsPath, "evidence", "index", "repos", dep.RepoID, "repo_index.json"),
		filepath.Join(dep.KnowledgeAbsPath, "evidence", "index", "repos", dep.RepoID, "repo_fingerprints.json"),
	}

	h := sha256.New()
	for _, path := range required {
		data, err := os.ReadFile(path)
		if err != nil {
			return ExternalKnowledge{}, errkit.New(errkit.ErrExternalDependencyMissing, err,
				fmt.Sprintf("%s: run --knowledge-index/--knowledge-scan in project %q for repo %q first",
					path, dep.ProjectCode, dep.RepoID)).
				WithContext("project_code", dep.ProjectCode).WithContext("repo_id", dep.RepoID)
		}
		h.Write(data)
	}

	return ExternalKnowledge{
		ProjectCode: dep.ProjectCode,
		RepoID:      dep.RepoID,
		BundleID:    fmt.Sprintf("sha256-%x", h.Sum(nil)),
		Path:        dep.KnowledgeAbsPath,
		LoadedAt:    now.UTC().Format(time.RFC3339),
	}, nil
}
