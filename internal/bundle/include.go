package bundle

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// systemCoreFiles is the required core set included for a repo-scope
// bundle, read from the top level of ssot/system/ (spec §4.10 step 2).
var systemCoreFiles = []string{
	"PROJECT_SNAPSHOT.json", "minimum.json", "integration.json",
	"gaps.json", "assumptions.json", "milestones.json",
}

// walkExisting walks root (if present) and appends every regular file
// found, as FileEntry{logicalPath relative to knowledgeRoot, sourcePath}.
func walkExisting(knowledgeRoot, root string) ([]FileEntry, error) {
	var out []FileEntry
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		rel, err := filepath.Rel(knowledgeRoot, root)
		if err != nil {
			return nil, err
		}
		return []FileEntry{{LogicalPath: filepath.ToSlash(rel), SourcePath: root}}, nil
	}
	err = filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(knowledgeRoot, path)
		if err != nil {
			return err
		}
		out = append(out, FileEntry{LogicalPath: filepath.ToSlash(rel), SourcePath: path})
		return nil
	})
	return out, err
}

// BuildIncludeList assembles the file set for scope per spec §4.10 step
// 2. scope is "system" or "repo:<id>".
func BuildIncludeList(knowledgeRoot, scope string) ([]FileEntry, error) {
	var entries []FileEntry
	add := func(paths ...string) error {
		for _, p := range paths {
			found, err := walkExisting(knowledgeRoot, filepath.Join(knowledgeRoot, filepath.FromSlash(p)))
			if err != nil {
				return err
			}
			entries = append(entries, found...)
		}
		return nil
	}

	if scope == "system" {
		if err := add("ssot/system", "views/teams", "views/system", "views/integration_map.json"); err != nil {
			return nil, err
		}
		if err := add("evidence/system", "evidence/index"); err != nil {
			return nil, err
		}
	} else if repoID, ok := strings.CutPrefix(scope, "repo:"); ok {
		for _, name := range systemCoreFiles {
			if err := add("ssot/system/" + name); err != nil {
				return nil, err
			}
		}
		if err := add("ssot/system/sections", "ssot/repos/"+repoID, "views/repos/"+repoID); err != nil {
			return nil, err
		}
		if err := add("evidence/repos/"+repoID, "evidence/index/repos/"+repoID); err != nil {
			return nil, err
		}
	}

	return dedupeSorted(entries), nil
}

func dedupeSorted(entries []FileEntry) []FileEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.LogicalPath] {
			continue
		}
		seen[e.LogicalPath] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogicalPath < out[j].LogicalPath })
	return out
}

// decisionPacketScopeToken mirrors freshness.fsSafeScope so this package
// can match DP-*__<scope>__*.{json,md} filenames without importing
// internal/freshness for one string transform.
func decisionPacketScopeToken(scope string) string {
	return strings.NewReplacer(":", "-", "/", "-").Replace(scope)
}

// IncludeOpenDecisionPackets adds every open decision packet (.json and
// its .md companion) matching scope from decisionPacketsDir.
func IncludeOpenDecisionPackets(knowledgeRoot, decisionPacketsDir, scope string) ([]FileEntry, error) {
	entries, err := os.ReadDir(decisionPacketsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	token := "__" + decisionPacketScopeToken(scope) + "__"
	var out []FileEntry
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), token) {
			continue
		}
		if !isOpenDecisionPacket(filepath.Join(decisionPacketsDir, e.Name())) {
			continue
		}
		abs := filepath.Join(decisionPacketsDir, e.Name())
		rel, err := filepath.Rel(knowledgeRoot, abs)
		if err != nil {
			rel = filepath.Join("decisions", e.Name())
		}
		out = append(out, FileEntry{LogicalPath: filepath.ToSlash(rel), SourcePath: abs})
	}
	return dedupeSorted(out), nil
}

func isOpenDecisionPacket(path string) bool {
	if strings.HasSuffix(path, ".md") {
		path = strings.TrimSuffix(path, ".md") + ".json" // the .md companion follows its .json's status
	} else if !strings.HasSuffix(path, ".json") {
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), `"status": "open"`) || strings.Contains(string(data), `"status":"open"`)
}
