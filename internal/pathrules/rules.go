// Package pathrules is the fixed, documented rule table that decides
// which repo-relative paths are "fingerprint-worthy" (spec §4.3 step 3).
// Matching is content-agnostic: only the path shape is inspected, never
// file contents.
package pathrules

import (
	"path/filepath"
	"strings"
)

// Category classifies why a path is fingerprint-worthy.
type Category string

const (
	CategoryManifest  Category = "manifest"
	CategoryLockfile  Category = "lockfile"
	CategoryInfra     Category = "infra"
	CategoryCI        Category = "ci"
	CategoryMigration Category = "migration"
	CategoryContract  Category = "contract"
)

// rule is one fixed glob→category mapping. A pattern with no "/" is
// matched against the path's basename at any depth; a pattern
// containing "/" (optionally with "**" segments) is matched against the
// full repo-relative path.
type rule struct {
	pattern  string
	category Category
}

// rules is the fixed, documented list from SPEC_FULL.md §4.3a.
var rules = []rule{
	{"package.json", CategoryManifest},
	{"package-lock.json", CategoryLockfile},
	{"yarn.lock", CategoryLockfile},
	{"pnpm-lock.yaml", CategoryLockfile},
	{"go.mod", CategoryManifest},
	{"go.sum", CategoryLockfile},
	{"Cargo.toml", CategoryManifest},
	{"Cargo.lock", CategoryLockfile},
	{"requirements*.txt", CategoryLockfile},
	{"Pipfile.lock", CategoryLockfile},
	{"Gemfile.lock", CategoryLockfile},
	{"Dockerfile*", CategoryInfra},
	{"helm/**", CategoryInfra},
	{"k8s/**", CategoryInfra},
	{"kubernetes/**", CategoryInfra},
	{".github/workflows/**", CategoryCI},
	{"**/migrations/**", CategoryMigration},
	{"**openapi**.json", CategoryContract},
	{"**openapi**.yaml", CategoryContract},
	{"**openapi**.yml", CategoryContract},
	{"**.proto", CategoryContract},
	{"**.graphql", CategoryContract},
}

// Classify returns the category and true if path matches a fixed rule,
// or ("", false) otherwise.
func Classify(path string) (Category, bool) {
	norm := filepath.ToSlash(path)
	base := filepath.Base(norm)
	for _, r := range rules {
		if strings.Contains(r.pattern, "/") {
			if matchPath(r.pattern, norm) {
				return r.category, true
			}
			continue
		}
		if matched, err := filepath.Match(r.pattern, base); err == nil && matched {
			return r.category, true
		}
	}
	return "", false
}

// IsFingerprintWorthy reports whether path matches any fixed rule.
func IsFingerprintWorthy(path string) bool {
	_, ok := Classify(path)
	return ok
}

// matchPath matches a "/"-separated glob pattern (whose segments may be
// "**", matching zero or more path segments) against a full
// repo-relative path.
func matchPath(pattern, path string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchSegments(patternSegs, pathSegs []string) bool {
	if len(patternSegs) == 0 {
		return len(pathSegs) == 0
	}
	head := patternSegs[0]
	if head == "**" {
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(patternSegs[1:], pathSegs[i:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	matched, err := filepath.Match(head, pathSegs[0])
	if err != nil || !matched {
		return false
	}
	return matchSegments(patternSegs[1:], pathSegs[1:])
}
