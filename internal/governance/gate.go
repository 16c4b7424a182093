package governance

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/freshness"
	"github.com/deliverygov/knowledgectl/internal/sufficiency"
)

var versionPattern = regexp.MustCompile(`^v\d+(\.\d+(\.\d+)?)?$`)

// Input gathers everything the gate needs to check one intake (spec
// §4.12).
type Input struct {
	Header            IntakeHeader
	LoadIA            func(id string) (*IntakeApproval, error) // nil, nil if absent
	CurrentVersion    string
	Staleness         freshness.Staleness
	SystemSufficiency *sufficiency.Record
	RepoSufficiency   *sufficiency.Record
	RepoIDs           []string // repos resolved for this scope, in case of fan-out
}

// Check runs all five gate checks in order and returns the resolved
// triaged items on pass, or a classified error on the first failing
// check (spec §4.12: "all must pass").
func Check(in Input) (items []TriagedItem, err error) {
	defer func() {
		if err != nil {
			reasonCode := string(errkit.ErrLaneAGovernanceViolation)
			if ce, ok := err.(*errkit.CoreError); ok {
				reasonCode = string(ce.Code)
			}
			slog.Warn("lane a governance gate rejected intake", "scope", in.Header.Scope, "reason_code", reasonCode)
		} else {
			slog.Info("lane a governance gate passed", "scope", in.Header.Scope, "triaged", len(items))
		}
	}()

	h := in.Header

	// 1. Metadata completeness.
	if h.IntakeApprovalID == "" || h.Scope == "" || h.KnowledgeVersion == "" {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			"intake header missing one of intake_approval_id, scope, knowledge_version")
	}
	if h.Scope != "system" && !strings.HasPrefix(h.Scope, "repo:") {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			fmt.Sprintf("intake header scope %q must be system or repo:<id>", h.Scope))
	}
	if !versionPattern.MatchString(h.KnowledgeVersion) {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			fmt.Sprintf("intake header knowledge_version %q does not match v<int>[.int[.int]]", h.KnowledgeVersion))
	}

	// 2. IA file present & matches verbatim.
	ia, err := in.LoadIA(h.IntakeApprovalID)
	if err != nil {
		return nil, err
	}
	if ia == nil {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			fmt.Sprintf("no processed intake approval found for id %q", h.IntakeApprovalID))
	}
	if ia.KnowledgeVersion != h.KnowledgeVersion {
		return nil, errkit.New(errkit.ErrKnowledgeVersionMismatch, nil,
			fmt.Sprintf("intake declares knowledge_version %q but intake approval %s has %q",
				h.KnowledgeVersion, ia.ID, ia.KnowledgeVersion))
	}
	if ia.ID != h.IntakeApprovalID || ia.Scope != h.Scope {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			"intake approval id/scope does not match the intake header verbatim")
	}

	// 3. Version lock.
	if h.KnowledgeVersion != in.CurrentVersion {
		return nil, errkit.New(errkit.ErrKnowledgeVersionMismatch, nil,
			fmt.Sprintf("intake declares knowledge_version %q but current is %q", h.KnowledgeVersion, in.CurrentVersion))
	}

	// 4. Freshness.
	if in.Staleness.Stale {
		return nil, errkit.New(errkit.ErrKnowledgeStale, nil,
			fmt.Sprintf("scope %s is stale: %s", h.Scope, strings.Join(in.Staleness.Reasons, ", ")))
	}

	// 5. Sufficiency.
	sufficiencyOverride := h.SufficiencyOverride || ia.SufficiencyOverride
	if !sufficiency.AcceptsDelivery(in.SystemSufficiency, in.RepoSufficiency, sufficiencyOverride) {
		return nil, errkit.New(errkit.ErrLaneAGovernanceViolation, nil,
			fmt.Sprintf("neither system nor %s is sufficient at %s", h.Scope, h.KnowledgeVersion))
	}

	return resolveTriagedItems(h.Scope, in.RepoIDs), nil
}

// resolveTriagedItems narrows the fan-out to exactly one repo for a
// repo:<id> scope, even if other rules would otherwise fan out further
// (spec §4.12 "On pass").
func resolveTriagedItems(scope string, repoIDs []string) []TriagedItem {
	if repoID, ok := strings.CutPrefix(scope, "repo:"); ok {
		return []TriagedItem{{RepoID: repoID}}
	}
	items := make([]TriagedItem, 0, len(repoIDs))
	for _, id := range repoIDs {
		items = append(items, TriagedItem{RepoID: id})
	}
	return items
}
