package knowledgescan

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

func initScanRepo(t *testing.T) string {
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
	mustWrite("go.mod", "module example.com/svc-a\n")
	mustWrite("cmd/svc-a/main.go", "package main\nfunc main(){}\n")

	run("add", "-A")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestRunDerivesFactsAndUnknownWithoutContract(t *testing.T) {
	dir := initScanRepo(t)
	a := gitx.New(dir)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	idx, fp, err := repoindex.Build(context.Background(), a, "svc-a", "main", nil, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	scan, refs, err := Run(context.Background(), a, idx, fp, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scan.Facts) == 0 {
		t.Fatalf("expected at least one fact")
	}
	if len(scan.Unknowns) != 1 {
		t.Fatalf("expected one unknown citing missing contract file, got %v", scan.Unknowns)
	}
	if len(refs) == 0 {
		t.Fatalf("expected evidence refs")
	}
	if scan.ScanVersion == 0 {
		t.Fatalf("expected non-zero deterministic scan_version")
	}
}

func TestRunFailsClosedOnFingerprintMismatch(t *testing.T) {
	dir := initScanRepo(t)
	a := gitx.New(dir)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	idx, fp, err := repoindex.Build(context.Background(), a, "svc-a", "main", nil, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	idx.Fingerprints["go.mod"] = "0000000000000000000000000000000000000000000000000000000000000000"
	if _, _, err := Run(context.Background(), a, idx, fp, now); err == nil {
		t.Fatalf("expected index_out_of_date error on fingerprint mismatch")
	}
}

func TestScanVersionIsDeterministic(t *testing.T) {
	v1 := scanVersion("svc-a", 1, []string{"EVID_a", "EVID_b"})
	v2 := scanVersion("svc-a", 1, []string{"EVID_a", "EVID_b"})
	if v1 != v2 {
		t.Fatalf("expected deterministic scan_version, got %d vs %d", v1, v2)
	}
	v3 := scanVersion("svc-b", 1, []string{"EVID_a", "EVID_b"})
	if v1 == v3 {
		t.Fatalf("expected different repo_id to change scan_version")
	}
}
