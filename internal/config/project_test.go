package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathsRequiresOpsSuffix(t *testing.T) {
	if _, err := NewPaths(filepath.Join(t.TempDir(), "notops")); err == nil {
		t.Fatalf("expected error for non-/ops path")
	}
}

func TestNewPathsDerivesKnowledgeRoot(t *testing.T) {
	root := t.TempDir()
	opsRoot := filepath.Join(root, "ops")
	p, err := NewPaths(opsRoot)
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}
	if p.KnowledgeRoot != filepath.Join(root, "knowledge") {
		t.Fatalf("unexpected knowledge root: %s", p.KnowledgeRoot)
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	p, _ := NewPaths(filepath.Join(t.TempDir(), "ops"))
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Freshness.MaxMergeEvents != 3 {
		t.Fatalf("expected default grace merge count 3, got %d", cfg.Freshness.MaxMergeEvents)
	}
}

func TestLoadRejectsReposRootOutsideProjectRoot(t *testing.T) {
	root := t.TempDir()
	opsRoot := filepath.Join(root, "ops")
	p, _ := NewPaths(opsRoot)
	if err := os.MkdirAll(p.ConfigDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := map[string]any{"version": 1, "repos_root": "../../../etc"}
	data, _ := json.Marshal(cfg)
	if err := os.WriteFile(filepath.Join(p.ConfigDir(), "PROJECT.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected traversal outside project root to be rejected")
	}
}

func TestLoadAcceptsReposRootWithinProjectRoot(t *testing.T) {
	root := t.TempDir()
	opsRoot := filepath.Join(root, "ops")
	p, _ := NewPaths(opsRoot)
	if err := os.MkdirAll(p.ConfigDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := map[string]any{"version": 1, "repos_root": "repos"}
	data, _ := json.Marshal(cfg)
	if err := os.WriteFile(filepath.Join(p.ConfigDir(), "PROJECT.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ReposRoot != filepath.Join(root, "repos") {
		t.Fatalf("unexpected repos_root: %s", loaded.ReposRoot)
	}
}
