package repoindex

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/deliverygov/knowledgectl/internal/gitx"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	mustWrite := func(rel, content string) {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("go.mod", "module example.com/svc-a\n\nrequire svc-b v0.0.0\n")
	mustWrite("cmd/svc-a/main.go", "package main\nfunc main(){}\n")
	mustWrite("internal/routes/handler.go", "package routes\n")
	mustWrite("migrations/0001_init.sql", "create table x();\n")
	mustWrite("Dockerfile", "FROM scratch\n")
	mustWrite("api/openapi.yaml", "openapi: 3.0.0\n")

	run("add", "-A")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestBuildComputesFingerprintsAndShape(t *testing.T) {
	dir := initRepo(t)
	a := gitx.New(dir)
	idx, fp, err := Build(context.Background(), a, "svc-a", "main", []string{"svc-b"}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(idx.Entrypoints) != 1 || idx.Entrypoints[0] != "cmd/svc-a/main.go" {
		t.Fatalf("unexpected entrypoints: %v", idx.Entrypoints)
	}
	if len(idx.MigrationsSchema) != 1 || idx.MigrationsSchema[0] != "migrations/0001_init.sql" {
		t.Fatalf("unexpected migrations: %v", idx.MigrationsSchema)
	}
	if len(idx.APISurface.OpenAPIFiles) != 1 {
		t.Fatalf("expected one openapi file, got %v", idx.APISurface.OpenAPIFiles)
	}
	if len(idx.APISurface.RoutesControllers) != 1 {
		t.Fatalf("expected one routes/controllers file, got %v", idx.APISurface.RoutesControllers)
	}
	if _, ok := idx.Fingerprints["go.mod"]; !ok {
		t.Fatalf("expected go.mod to be fingerprinted")
	}
	if idx.BuildCommands.Build != "go build ./..." {
		t.Fatalf("unexpected build command: %q", idx.BuildCommands.Build)
	}
	if len(idx.CrossRepoDependencies) != 1 || idx.CrossRepoDependencies[0].Target != "svc-b" {
		t.Fatalf("expected cross-repo dependency on svc-b, got %v", idx.CrossRepoDependencies)
	}

	foundInfra := false
	for _, h := range idx.Hotspots {
		if h.FilePath == "Dockerfile" {
			foundInfra = true
		}
	}
	if !foundInfra {
		t.Fatalf("expected Dockerfile to be a hotspot, got %v", idx.Hotspots)
	}

	if len(fp.Files) != len(idx.Fingerprints) {
		t.Fatalf("fingerprints/files length mismatch: %d vs %d", len(fp.Files), len(idx.Fingerprints))
	}
	for _, f := range fp.Files {
		if idx.Fingerprints[f.Path] != f.SHA256 {
			t.Fatalf("fingerprint mismatch for %s", f.Path)
		}
	}
}

func TestBuildFailsOnUnknownBranch(t *testing.T) {
	dir := initRepo(t)
	a := gitx.New(dir)
	if _, _, err := Build(context.Background(), a, "svc-a", "does-not-exist", nil, time.Now().UTC()); err == nil {
		t.Fatalf("expected error for unresolved branch")
	}
}
