package depgraph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverrideYAMLMissingFileIsPending(t *testing.T) {
	o, err := LoadOverrideYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOverrideYAML: %v", err)
	}
	if o.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", o.Status)
	}
}

func TestLoadOverrideYAMLParsesEdgesAndStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dependency_graph.override.yaml")
	content := "version: 1\n" +
		"status: approved\n" +
		"approved_by: alice\n" +
		"approved_at: \"2026-01-01T00:00:00Z\"\n" +
		"add_edges:\n" +
		"  - from: svc-a\n" +
		"    to: svc-b\n" +
		"    type: depends_on\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOverrideYAML(path)
	if err != nil {
		t.Fatalf("LoadOverrideYAML: %v", err)
	}
	if o.Status != StatusApproved || len(o.AddEdges) != 1 || o.AddEdges[0].To != "svc-b" {
		t.Fatalf("unexpected override: %+v", o)
	}
}

func TestLoadOverrideYAMLRejectsInvalidStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dependency_graph.override.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nstatus: maybe\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOverrideYAML(path); err == nil {
		t.Fatalf("expected rejection for invalid status")
	}
}

func TestCompileOverrideYAMLWritesCanonicalJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "dependency_graph.override.yaml")
	jsonPath := filepath.Join(dir, "dependency_graph.override.json")
	content := "version: 1\nstatus: approved\napproved_by: alice\napproved_at: \"2026-01-01T00:00:00Z\"\n"
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CompileOverrideYAML(yamlPath, jsonPath); err != nil {
		t.Fatalf("CompileOverrideYAML: %v", err)
	}
	loaded, err := LoadOverride(jsonPath)
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if loaded.Status != StatusApproved || loaded.ApprovedBy != "alice" {
		t.Fatalf("unexpected compiled override: %+v", loaded)
	}
}
