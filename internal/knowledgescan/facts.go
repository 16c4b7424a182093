package knowledgescan

import (
	"fmt"
	"sort"

	"github.com/deliverygov/knowledgectl/internal/evidence"
	"github.com/deliverygov/knowledgectl/internal/pathrules"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

const sampleCap = 50

// deriveFacts builds the fixed set of pattern-rule facts from an index
// (spec §4.6 step 5). Every fact's evidence_ids are drawn from paths
// that evidence.CollectPaths already included, so lookups by path
// always resolve.
func deriveFacts(idx *repoindex.RepoIndex, evidenceIDByPath map[string]string, known map[string]evidence.Ref) ([]evidence.Fact, error) {
	var facts []evidence.Fact

	add := func(prefix, claim string, paths ...string) error {
		ids := idsForPaths(paths, evidenceIDByPath)
		if len(ids) == 0 {
			return nil
		}
		// The claim carries its stable prefix verbatim (spec §4.7 parses
		// facts by prefixes like "Entrypoint: " during synthesis).
		f, err := evidence.NewFact(prefix, prefix+claim, ids, known)
		if err != nil {
			return err
		}
		facts = append(facts, f)
		return nil
	}

	for _, p := range idx.Entrypoints {
		if err := add("Entrypoint: ", p, p); err != nil {
			return nil, err
		}
	}
	for _, p := range idx.APISurface.OpenAPIFiles {
		if err := add("API contract file: ", p, p); err != nil {
			return nil, err
		}
	}
	for _, p := range capped(idx.APISurface.RoutesControllers, sampleCap) {
		if err := add("Route/controller: ", p, p); err != nil {
			return nil, err
		}
	}
	for _, p := range capped(idx.APISurface.EventsTopics, sampleCap) {
		if err := add("Event/topic: ", p, p); err != nil {
			return nil, err
		}
	}
	for _, p := range capped(idx.MigrationsSchema, sampleCap) {
		if err := add("Migration: ", p, p); err != nil {
			return nil, err
		}
	}
	for _, h := range idx.Hotspots {
		if err := add("Hotspot: ", fmt.Sprintf("%s (%s)", h.FilePath, h.Reason), h.FilePath); err != nil {
			return nil, err
		}
	}
	for _, d := range idx.CrossRepoDependencies {
		if err := add("Cross-repo dependency: ", d.Target, d.EvidenceRefs...); err != nil {
			return nil, err
		}
	}

	for kind, cmd := range map[string]string{
		"install": idx.BuildCommands.Install,
		"lint":    idx.BuildCommands.Lint,
		"build":   idx.BuildCommands.Build,
		"test":    idx.BuildCommands.Test,
	} {
		if cmd == "" {
			continue
		}
		if err := add(fmt.Sprintf("Build command (%s): ", kind), cmd, idx.BuildCommands.EvidenceFiles...); err != nil {
			return nil, err
		}
	}

	var fingerprinted []string
	for p := range idx.Fingerprints {
		fingerprinted = append(fingerprinted, p)
	}
	sort.Strings(fingerprinted)
	for _, p := range fingerprinted {
		cat, ok := pathrules.Classify(p)
		if !ok {
			continue
		}
		if err := add(fmt.Sprintf("%s file: ", categoryLabel(cat)), p, p); err != nil {
			return nil, err
		}
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].FactID < facts[j].FactID })
	return facts, nil
}

func categoryLabel(cat pathrules.Category) string {
	switch cat {
	case pathrules.CategoryManifest:
		return "Manifest"
	case pathrules.CategoryLockfile:
		return "Lockfile"
	case pathrules.CategoryContract:
		return "Contract"
	case pathrules.CategoryInfra:
		return "Infra"
	case pathrules.CategoryCI:
		return "CI"
	case pathrules.CategoryMigration:
		return "Migration"
	default:
		return "Unknown"
	}
}

func idsForPaths(paths []string, evidenceIDByPath map[string]string) []string {
	var ids []string
	for _, p := range paths {
		if id, ok := evidenceIDByPath[p]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func capped(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
