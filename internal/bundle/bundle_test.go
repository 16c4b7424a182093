package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deliverygov/knowledgectl/internal/freshness"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuildIncludeListSystemScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ssot", "system", "integration.json"), `{"a":1}`)
	writeFile(t, filepath.Join(root, "views", "teams", "team-a.md"), "# team a\n")
	writeFile(t, filepath.Join(root, "views", "integration_map.json"), `{}`)
	writeFile(t, filepath.Join(root, "ssot", "repos", "svc-a", "notes.md"), "should not be included\n")

	entries, err := BuildIncludeList(root, "system")
	if err != nil {
		t.Fatalf("BuildIncludeList: %v", err)
	}
	paths := map[string]bool{}
	for _, e := range entries {
		paths[e.LogicalPath] = true
	}
	if !paths["ssot/system/integration.json"] || !paths["views/teams/team-a.md"] || !paths["views/integration_map.json"] {
		t.Fatalf("missing expected system-scope files: %v", entries)
	}
	if paths["ssot/repos/svc-a/notes.md"] {
		t.Fatalf("repo-scoped file leaked into system scope: %v", entries)
	}
}

func TestBuildIncludeListRepoScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ssot", "system", "integration.json"), `{}`)
	writeFile(t, filepath.Join(root, "ssot", "system", "minimum.json"), `{}`)
	writeFile(t, filepath.Join(root, "ssot", "system", "sections", "s1.md"), "section\n")
	writeFile(t, filepath.Join(root, "ssot", "repos", "svc-a", "notes.md"), "repo notes\n")
	writeFile(t, filepath.Join(root, "views", "repos", "svc-a", "view.md"), "view\n")
	writeFile(t, filepath.Join(root, "ssot", "repos", "svc-b", "notes.md"), "other repo\n")

	entries, err := BuildIncludeList(root, "repo:svc-a")
	if err != nil {
		t.Fatalf("BuildIncludeList: %v", err)
	}
	paths := map[string]bool{}
	for _, e := range entries {
		paths[e.LogicalPath] = true
	}
	for _, want := range []string{
		"ssot/system/integration.json", "ssot/system/minimum.json",
		"ssot/system/sections/s1.md", "ssot/repos/svc-a/notes.md", "views/repos/svc-a/view.md",
	} {
		if !paths[want] {
			t.Fatalf("missing expected repo-scope file %q: %v", want, entries)
		}
	}
	if paths["ssot/repos/svc-b/notes.md"] {
		t.Fatalf("svc-b file leaked into svc-a scope: %v", entries)
	}
}

func TestNormalizeFileCanonicalizesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	writeFile(t, path, `{"b":2,"a":1}`)
	calls := 0
	data, err := NormalizeFile(FileEntry{LogicalPath: "x.json", SourcePath: path}, func(decoded any, logicalPath string) ([]byte, error) {
		calls++
		return []byte(`{"a":1,"b":2}` + "\n"), nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("NormalizeFile json: %v, calls=%d", err, calls)
	}
	if string(data) != "{\"a\":1,\"b\":2}\n" {
		t.Fatalf("unexpected normalized json: %q", data)
	}
}

func TestNormalizeFileFixesCRLFAndTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.md")
	writeFile(t, path, "line1\r\nline2")
	data, err := NormalizeFile(FileEntry{LogicalPath: "x.md", SourcePath: path}, nil)
	if err != nil {
		t.Fatalf("NormalizeFile text: %v", err)
	}
	if string(data) != "line1\nline2\n" {
		t.Fatalf("unexpected normalized text: %q", data)
	}
}

func TestNormalizeFilePassesThroughOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.bin")
	writeFile(t, path, "raw\r\nbytes")
	data, err := NormalizeFile(FileEntry{LogicalPath: "x.bin", SourcePath: path}, nil)
	if err != nil {
		t.Fatalf("NormalizeFile binary: %v", err)
	}
	if string(data) != "raw\r\nbytes" {
		t.Fatalf("expected passthrough, got %q", data)
	}
}

func TestBuildManifestAndBundleID(t *testing.T) {
	files := []NormalizedFile{
		{LogicalPath: "b.json", Data: []byte(`{"x":1}` + "\n")},
		{LogicalPath: "a.json", Data: []byte(`{"y":2}` + "\n")},
	}
	m := BuildManifest("system", files)
	if len(m.Files) != 2 {
		t.Fatalf("expected 2 manifest records, got %d", len(m.Files))
	}

	sha1, id1, _, err := ManifestSHAAndBundleID(m)
	if err != nil {
		t.Fatalf("ManifestSHAAndBundleID: %v", err)
	}
	sha2, id2, _, err := ManifestSHAAndBundleID(m)
	if err != nil {
		t.Fatalf("ManifestSHAAndBundleID second call: %v", err)
	}
	if sha1 != sha2 || id1 != id2 {
		t.Fatalf("expected reproducible bundle_id, got %s vs %s", id1, id2)
	}
	if id1 != "sha256-"+sha1 {
		t.Fatalf("bundle_id must be sha256-<manifest_sha>, got %s / %s", id1, sha1)
	}
}

func TestBuildRefusesOnUnoverriddenStaleness(t *testing.T) {
	root := t.TempDir()
	in := BuildInput{
		Scope: "system", KnowledgeRoot: root, BundlesRoot: filepath.Join(root, "bundles"),
		DecisionPacketsDir: filepath.Join(root, "decision_packets"),
		Staleness:          freshness.Staleness{Scope: "system", Stale: true, HardStale: true, Reasons: []string{"svc-a:head_moved"}},
	}
	if _, err := Build(nil, in, time.Now()); err == nil {
		t.Fatalf("expected Build to refuse on unoverridden staleness")
	}
}

func TestBuildEndToEndSystemScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ssot", "system", "integration.json"), `{"a":1}`)
	writeFile(t, filepath.Join(root, "views", "system", "summary.md"), "hello\r\n")

	in := BuildInput{
		Scope: "system", KnowledgeRoot: root, BundlesRoot: filepath.Join(root, "_bundles"),
		DecisionPacketsDir: filepath.Join(root, "decision_packets"),
		Staleness:          freshness.Staleness{Scope: "system"},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result, err := Build(nil, in, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.BundleID == "" {
		t.Fatalf("expected non-empty bundle id")
	}
	if _, err := os.Stat(filepath.Join(result.OutDir, "manifest.json")); err != nil {
		t.Fatalf("expected manifest.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(result.OutDir, "content", "ssot", "system", "integration.json")); err != nil {
		t.Fatalf("expected content file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(in.BundlesRoot, "LATEST.json")); err != nil {
		t.Fatalf("expected LATEST.json: %v", err)
	}

	// Reproducibility: rerunning over unchanged knowledge yields the same bundle_id.
	result2, err := Build(nil, in, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Build (rerun): %v", err)
	}
	if result2.BundleID != result.BundleID {
		t.Fatalf("expected identical bundle_id on rerun, got %s vs %s", result2.BundleID, result.BundleID)
	}
}
