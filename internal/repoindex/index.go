package repoindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/pathrules"
)

// CurrentVersion is the indexer's own format version, not the target
// repo's commit.
const CurrentVersion = 1

var entrypointBasenames = []string{
	"main.go", "index.js", "index.ts", "index.mjs",
	"server.js", "server.ts", "app.py", "manage.py", "wsgi.py",
}

func looksLikeEntrypoint(path string) bool {
	base := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		base = path[i+1:]
	}
	for _, b := range entrypointBasenames {
		if base == b {
			return true
		}
	}
	if strings.HasPrefix(path, "cmd/") && base == "main.go" {
		return true
	}
	return false
}

func hasSegment(path string, segments ...string) bool {
	parts := strings.Split(path, "/")
	for _, p := range parts {
		for _, s := range segments {
			if p == s {
				return true
			}
		}
	}
	return false
}

// Build walks the tree at branch's resolved ref and computes a
// RepoIndex and RepoFingerprints pair (spec §4.3 steps 1-5).
// knownRepoIDs are the other active repo_ids in the registry,
// consulted to discover cross_repo_dependencies by manifest content
// (spec §3 RepoIndex.cross_repo_dependencies).
func Build(ctx context.Context, adapter *gitx.Adapter, repoID, branch string, knownRepoIDs []string, now time.Time) (*RepoIndex, *RepoFingerprints, error) {
	ref, err := adapter.ResolveRef(ctx, branch)
	if err != nil {
		return nil, nil, errkit.New(errkit.ErrGitFailed, err, "resolve ref").WithContext("repo_id", repoID)
	}
	if ref == "" {
		return nil, nil, errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("branch %q not found locally for repo %s", branch, repoID)).WithContext("repo_id", repoID)
	}
	sha, err := adapter.RevListOne(ctx, ref)
	if err != nil {
		return nil, nil, errkit.New(errkit.ErrGitFailed, err, "resolve commit sha").WithContext("repo_id", repoID)
	}
	files, err := adapter.ListTree(ctx, ref)
	if err != nil {
		return nil, nil, errkit.New(errkit.ErrGitFailed, err, "list tree").WithContext("repo_id", repoID)
	}
	sort.Strings(files)

	idx := &RepoIndex{
		Version:   CurrentVersion,
		RepoID:    repoID,
		Ref:       ref,
		CommitSHA: sha,
		ScannedAt: now.UTC().Format(time.RFC3339),
		Fingerprints: make(map[string]string),
	}
	fp := &RepoFingerprints{Version: CurrentVersion, RepoID: repoID, CommitSHA: sha}

	var openapiFiles, routesControllers, eventsTopics []string
	var manifestContents = make(map[string][]byte)

	for _, path := range files {
		if looksLikeEntrypoint(path) {
			idx.Entrypoints = append(idx.Entrypoints, path)
		}
		if hasSegment(path, "routes", "controllers", "handlers") {
			routesControllers = append(routesControllers, path)
		}
		if hasSegment(path, "events", "topics") {
			eventsTopics = append(eventsTopics, path)
		}

		cat, worthy := pathrules.Classify(path)
		if !worthy {
			continue
		}
		ok, content, err := adapter.ShowFileAtRef(ctx, ref, path)
		if err != nil || !ok {
			return nil, nil, errkit.New(errkit.ErrEvidenceMissing, err,
				fmt.Sprintf("read fingerprinted path %q at %s", path, ref)).WithContext("repo_id", repoID)
		}
		sum := sha256.Sum256(content)
		hexSum := hex.EncodeToString(sum[:])
		idx.Fingerprints[path] = hexSum
		fp.Files = append(fp.Files, FingerprintEntry{Path: path, SHA256: hexSum})

		switch cat {
		case pathrules.CategoryContract:
			if strings.Contains(strings.ToLower(path), "openapi") {
				openapiFiles = append(openapiFiles, path)
			}
		case pathrules.CategoryMigration:
			idx.MigrationsSchema = append(idx.MigrationsSchema, path)
		case pathrules.CategoryInfra:
			idx.Hotspots = append(idx.Hotspots, Hotspot{FilePath: path, Reason: "infra change surface"})
		case pathrules.CategoryCI:
			idx.Hotspots = append(idx.Hotspots, Hotspot{FilePath: path, Reason: "CI pipeline change surface"})
		}

		base := path
		if i := strings.LastIndex(path, "/"); i >= 0 {
			base = path[i+1:]
		}
		switch base {
		case "go.mod", "package.json", "Cargo.toml", "requirements.txt", "Pipfile.lock", "Gemfile.lock":
			manifestContents[path] = content
		}
	}

	idx.APISurface = APISurface{
		OpenAPIFiles:      openapiFiles,
		RoutesControllers: routesControllers,
		EventsTopics:      eventsTopics,
	}
	idx.BuildCommands = deriveBuildCommands(manifestContents)
	idx.CrossRepoDependencies = deriveCrossRepoDependencies(manifestContents, repoID, knownRepoIDs)

	sort.Slice(fp.Files, func(i, j int) bool { return fp.Files[i].Path < fp.Files[j].Path })
	return idx, fp, nil
}

func deriveBuildCommands(manifests map[string][]byte) BuildCommands {
	var bc BuildCommands
	var evidence []string
	for path := range manifests {
		base := path
		if i := strings.LastIndex(path, "/"); i >= 0 {
			base = path[i+1:]
		}
		evidence = append(evidence, path)
		switch base {
		case "go.mod":
			bc.Install, bc.Lint, bc.Build, bc.Test = "go mod download", "go vet ./...", "go build ./...", "go test ./..."
		case "package.json":
			if bc.Build == "" {
				bc.Install, bc.Lint, bc.Build, bc.Test = "npm ci", "npm run lint", "npm run build", "npm test"
			}
		case "Cargo.toml":
			if bc.Build == "" {
				bc.Install, bc.Lint, bc.Build, bc.Test = "cargo fetch", "cargo clippy", "cargo build", "cargo test"
			}
		case "requirements.txt", "Pipfile.lock":
			if bc.Build == "" {
				bc.Install, bc.Test = "pip install -r requirements.txt", "pytest"
			}
		}
	}
	sort.Strings(evidence)
	bc.EvidenceFiles = evidence
	return bc
}

func deriveCrossRepoDependencies(manifests map[string][]byte, selfRepoID string, knownRepoIDs []string) []CrossRepoDependency {
	var deps []CrossRepoDependency
	for _, other := range knownRepoIDs {
		if other == selfRepoID {
			continue
		}
		var refs []string
		for path, content := range manifests {
			if strings.Contains(string(content), other) {
				refs = append(refs, path)
			}
		}
		if len(refs) == 0 {
			continue
		}
		sort.Strings(refs)
		deps = append(deps, CrossRepoDependency{Type: "manifest_reference", Target: other, EvidenceRefs: refs})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Target < deps[j].Target })
	return deps
}
