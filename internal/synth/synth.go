package synth

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/knowledgescan"
)

const (
	prefixEntrypoint = "Entrypoint: "
	prefixContract   = "API contract file: "
	prefixInfra      = "Infra file: "
	prefixCrossRepo  = "Cross-repo dependency: "
)

// Synthesize rolls per-repo scans into the system Integration view and
// a gaps file (spec §4.7). Missing any repo's scan among repoIDs
// aborts with a precise "run scan first" message and the missing list.
func Synthesize(repoIDs []string, scans map[string]*knowledgescan.Scan, now time.Time) (*Integration, *Gaps, error) {
	sortedRepoIDs := append([]string(nil), repoIDs...)
	sort.Strings(sortedRepoIDs)

	var missing []string
	for _, id := range sortedRepoIDs {
		if _, ok := scans[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errkit.New(errkit.ErrMissingInput, nil,
			fmt.Sprintf("run scan first for repos: %s", strings.Join(missing, ", ")))
	}

	generatedAt := now.UTC().Format(time.RFC3339)
	integration := &Integration{
		Version:            1,
		Scope:              "system",
		GeneratedAt:        generatedAt,
		CrossRepoContracts: []string{},
		KnownUnknowns:      []string{},
	}
	gaps := &Gaps{Version: 1, Scope: "system", GeneratedAt: generatedAt}

	crossRepoSet := make(map[string]struct{})

	for _, id := range sortedRepoIDs {
		scan := scans[id]
		integration.Inputs = append(integration.Inputs, InputRef{
			RepoID: id, ScannedAt: scan.ScannedAt, ScanVersion: scan.ScanVersion,
		})

		ri := RepoIntegration{RepoID: id}
		for _, f := range scan.Facts {
			switch {
			case strings.HasPrefix(f.Claim, prefixEntrypoint):
				ri.Entrypoints = append(ri.Entrypoints, strings.TrimPrefix(f.Claim, prefixEntrypoint))
			case strings.HasPrefix(f.Claim, prefixContract):
				ri.APIContractFiles = append(ri.APIContractFiles, strings.TrimPrefix(f.Claim, prefixContract))
			case strings.HasPrefix(f.Claim, prefixInfra):
				ri.InfraFiles = append(ri.InfraFiles, strings.TrimPrefix(f.Claim, prefixInfra))
			case strings.HasPrefix(f.Claim, prefixCrossRepo):
				crossRepoSet[strings.TrimPrefix(f.Claim, prefixCrossRepo)] = struct{}{}
			}
		}
		sort.Strings(ri.Entrypoints)
		sort.Strings(ri.APIContractFiles)
		sort.Strings(ri.InfraFiles)
		integration.IntegrationMap.Repos = append(integration.IntegrationMap.Repos, ri)

		for _, u := range scan.Unknowns {
			integration.KnownUnknowns = append(integration.KnownUnknowns, fmt.Sprintf("%s: %s", id, u.Text))
		}

		if len(ri.APIContractFiles) == 0 {
			gaps.Gaps = append(gaps.Gaps, Gap{
				RepoID:  id,
				Kind:    "missing_contract",
				Message: fmt.Sprintf("repo %s has no evidenced API contract file", id),
			})
		}
	}

	for target := range crossRepoSet {
		integration.CrossRepoContracts = append(integration.CrossRepoContracts, target)
	}
	sort.Strings(integration.CrossRepoContracts)
	sort.Strings(integration.KnownUnknowns)

	return integration, gaps, nil
}

// Render produces integration.md summarizing both outputs.
func Render(integration *Integration, gaps *Gaps) string {
	var b strings.Builder
	b.WriteString("# System integration\n\n")
	fmt.Fprintf(&b, "Generated at: %s\n\n", integration.GeneratedAt)

	b.WriteString("## Repos\n\n")
	for _, r := range integration.IntegrationMap.Repos {
		fmt.Fprintf(&b, "### %s\n\n", r.RepoID)
		fmt.Fprintf(&b, "- Entrypoints: %s\n", strings.Join(r.Entrypoints, ", "))
		fmt.Fprintf(&b, "- API contract files: %s\n", strings.Join(r.APIContractFiles, ", "))
		fmt.Fprintf(&b, "- Infra files: %s\n\n", strings.Join(r.InfraFiles, ", "))
	}

	if len(integration.CrossRepoContracts) > 0 {
		b.WriteString("## Cross-repo contracts\n\n")
		for _, c := range integration.CrossRepoContracts {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(gaps.Gaps) > 0 {
		b.WriteString("## Gaps\n\n")
		for _, g := range gaps.Gaps {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", g.Kind, g.RepoID, g.Message)
		}
		b.WriteString("\n")
	}

	if len(integration.KnownUnknowns) > 0 {
		b.WriteString("## Known unknowns\n\n")
		for _, u := range integration.KnownUnknowns {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	return b.String()
}
