// Package gitx provides the read-only git adapter from spec §4.2: ref
// resolution, content reads at a ref, and working-tree diagnostics, each
// invoked with a per-call timeout and a safe.directory override so the
// core never depends on the caller's global git config.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout is the default per-invocation timeout (spec §5).
const DefaultTimeout = 30 * time.Second

// ExternalKnowledgeTimeout bounds external-knowledge and gh reads (spec §5).
const ExternalKnowledgeTimeout = 20 * time.Second

// Adapter wraps git invocations rooted at a single repository path.
type Adapter struct {
	RepoAbs string
	Timeout time.Duration
}

// New creates an Adapter for repoAbs with the default timeout.
func New(repoAbs string) *Adapter {
	return &Adapter{RepoAbs: repoAbs, Timeout: DefaultTimeout}
}

// Result captures the raw outcome of a git invocation.
type Result struct {
	OK     bool
	Stdout []byte
	Stderr []byte
	Err    error
}

func (a *Adapter) run(ctx context.Context, args ...string) Result {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullArgs := append([]string{"-c", "safe.directory=" + a.RepoAbs}, args...)
	cmd := exec.CommandContext(runCtx, "git", fullArgs...)
	cmd.Dir = a.RepoAbs
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return Result{OK: false, Stdout: stdout.Bytes(), Stderr: stderr.Bytes(),
			Err: fmt.Errorf("git %s: timed out after %s", strings.Join(args, " "), timeout)}
	}
	if err != nil {
		return Result{OK: false, Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Err: err}
	}
	return Result{OK: true, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
}

// refExists reports whether a local ref (e.g. refs/remotes/origin/main)
// resolves.
func (a *Adapter) refExists(ctx context.Context, ref string) bool {
	res := a.run(ctx, "show-ref", "--verify", "--quiet", ref)
	return res.OK
}

// ResolveRef returns "origin/<branch>" if the remote-tracking ref
// exists, else "<branch>" if the local branch exists, else "", nil (no
// ref resolvable, which the caller may treat as "branch not found").
func (a *Adapter) ResolveRef(ctx context.Context, branch string) (string, error) {
	if branch == "" {
		return "", fmt.Errorf("resolve ref: empty branch name")
	}
	if a.refExists(ctx, "refs/remotes/origin/"+branch) {
		return "origin/" + branch, nil
	}
	if a.refExists(ctx, "refs/heads/"+branch) {
		return branch, nil
	}
	return "", nil
}

// ShowFileAtRef returns the bytes of path as committed at ref, reading
// strictly through git show so working-tree edits never leak into
// evidence (spec §4.2, §4.3 step 4).
func (a *Adapter) ShowFileAtRef(ctx context.Context, ref, path string) (ok bool, content []byte, err error) {
	res := a.run(ctx, "show", ref+":"+path)
	if !res.OK {
		return false, nil, fmt.Errorf("git show %s:%s: %s", ref, path, strings.TrimSpace(string(res.Stderr)))
	}
	return true, res.Stdout, nil
}

// RevListOne returns the commit sha that ref currently resolves to.
func (a *Adapter) RevListOne(ctx context.Context, ref string) (string, error) {
	res := a.run(ctx, "rev-list", "-1", ref)
	if !res.OK {
		return "", fmt.Errorf("git rev-list -1 %s: %s", ref, strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// DiffTreeNames lists paths changed between sha^ and sha.
func (a *Adapter) DiffTreeNames(ctx context.Context, sha string) ([]string, error) {
	res := a.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", sha+"^", sha)
	if !res.OK {
		return nil, fmt.Errorf("git diff-tree %s^ %s: %s", sha, sha, strings.TrimSpace(string(res.Stderr)))
	}
	return splitNonEmptyLines(string(res.Stdout)), nil
}

// ListTree lists every regular file path tracked at ref, repo-relative
// and slash-separated (spec §4.3 step 2: "list files at ref").
func (a *Adapter) ListTree(ctx context.Context, ref string) ([]string, error) {
	res := a.run(ctx, "ls-tree", "-r", "--name-only", "-z", ref)
	if !res.OK {
		return nil, fmt.Errorf("git ls-tree -r %s: %s", ref, strings.TrimSpace(string(res.Stderr)))
	}
	var out []string
	for _, p := range strings.Split(strings.TrimRight(string(res.Stdout), "\x00"), "\x00") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// RevParseHead returns the current HEAD commit sha.
func (a *Adapter) RevParseHead(ctx context.Context) (string, error) {
	res := a.run(ctx, "rev-parse", "HEAD")
	if !res.OK {
		return "", fmt.Errorf("git rev-parse HEAD: %s", strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// WorkTreeDiagnostics is the structured result of probing a work tree.
type WorkTreeDiagnostics struct {
	OK               bool
	DubiousOwnership bool
	Stderr           string
}

// ProbeWorkTree runs a cheap status check against cwd and classifies a
// "dubious ownership" failure specifically, since that failure mode
// needs a distinct remediation (safe.directory) from a generic git
// failure.
func (a *Adapter) ProbeWorkTree(ctx context.Context) WorkTreeDiagnostics {
	res := a.run(ctx, "status", "--porcelain")
	if res.OK {
		return WorkTreeDiagnostics{OK: true}
	}
	stderr := string(res.Stderr)
	return WorkTreeDiagnostics{
		OK:               false,
		DubiousOwnership: strings.Contains(stderr, "dubious ownership"),
		Stderr:           stderr,
	}
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
