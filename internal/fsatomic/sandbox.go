package fsatomic

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SandboxPath validates that candidate lies at or under allowedBase,
// resolving symlinks on the existing portion of the path so a symlink
// cannot be used to escape the sandbox (spec §4.1 path sandbox).
func SandboxPath(allowedBase, candidate string) (string, error) {
	absBase, err := filepath.Abs(allowedBase)
	if err != nil {
		return "", fmt.Errorf("resolve base: %w", err)
	}
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve candidate: %w", err)
	}

	resolvedBase := resolveExistingPrefix(absBase)
	resolvedCandidate := resolveExistingPrefix(absCandidate)

	if !isDescendantOrEqual(resolvedBase, resolvedCandidate) {
		return "", fmt.Errorf("path %q escapes sandbox %q", candidate, allowedBase)
	}
	return absCandidate, nil
}

// resolveExistingPrefix resolves symlinks on the longest existing
// ancestor of path, then rejoins the non-existent suffix. This lets the
// sandbox check catch a symlink escape even when the final path
// component does not exist yet (as with a not-yet-written bundle file).
func resolveExistingPrefix(path string) string {
	current := path
	var suffix []string
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			if len(suffix) == 0 {
				return resolved
			}
			return filepath.Join(append([]string{resolved}, suffix...)...)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		suffix = append([]string{filepath.Base(current)}, suffix...)
		current = parent
	}
}

func isDescendantOrEqual(base, candidate string) bool {
	if base == candidate {
		return true
	}
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}
