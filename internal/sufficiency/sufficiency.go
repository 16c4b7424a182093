// Package sufficiency implements the Sufficiency Record: a tri-valued
// judgment of whether Knowledge at (scope, knowledge_version) is
// adequate for Lane B to accept delivery (spec §3, §4.9).
package sufficiency

import (
	"fmt"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

// Status is the closed tri-valued sufficiency judgment.
type Status string

const (
	Insufficient Status = "insufficient"
	Partial      Status = "partial"
	Sufficient   Status = "sufficient"
)

func (s Status) valid() bool {
	switch s {
	case Insufficient, Partial, Sufficient:
		return true
	default:
		return false
	}
}

// rank orders statuses for the monotonicity check: a record may only
// move forward (insufficient -> partial -> sufficient), never backward,
// within the same (scope, knowledge_version) key.
func (s Status) rank() int {
	switch s {
	case Insufficient:
		return 0
	case Partial:
		return 1
	case Sufficient:
		return 2
	default:
		return -1
	}
}

// Record is one sufficiency judgment.
type Record struct {
	Scope           string   `json:"scope"`
	KnowledgeVersion string  `json:"knowledge_version"`
	Status          Status   `json:"status"`
	CapturedAt      string   `json:"captured_at"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Propose records an insufficient or partial judgment. Proposing
// "sufficient" is rejected: sufficiency is reached only through
// Approve, an explicit deliberate step (spec §4.9), never as a side
// effect of scan/synthesize.
func Propose(scope, knowledgeVersion string, status Status, reasons []string, now time.Time) (Record, error) {
	if !status.valid() {
		return Record{}, errkit.New(errkit.ErrContractViolation, nil, fmt.Sprintf("invalid sufficiency status %q", status))
	}
	if status == Sufficient {
		return Record{}, errkit.New(errkit.ErrContractViolation, nil,
			"sufficient may only be reached through Approve, not Propose")
	}
	return Record{
		Scope: scope, KnowledgeVersion: knowledgeVersion, Status: status,
		CapturedAt: now.UTC().Format(time.RFC3339), Reasons: reasons,
	}, nil
}

// Approve records the explicit approval that moves a (scope, version)
// record to sufficient.
func Approve(scope, knowledgeVersion string, now time.Time) Record {
	return Record{
		Scope: scope, KnowledgeVersion: knowledgeVersion, Status: Sufficient,
		CapturedAt: now.UTC().Format(time.RFC3339),
	}
}

// Transition validates that moving from prior (if any) to next respects
// monotonicity for the same (scope, knowledge_version) key; a record for
// a different knowledge_version is a fresh key and any status is valid.
func Transition(prior *Record, next Record) error {
	if prior == nil {
		return nil
	}
	if prior.Scope != next.Scope || prior.KnowledgeVersion != next.KnowledgeVersion {
		return nil
	}
	if next.Status.rank() < prior.Status.rank() {
		return errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("sufficiency for %s@%s cannot regress from %s to %s",
				next.Scope, next.KnowledgeVersion, prior.Status, next.Status))
	}
	return nil
}

// AcceptsDelivery reports whether Lane B may accept delivery for
// repoScope given the system-scope record and the specific repo-scope
// record (either being sufficient at the current version is enough),
// per spec §4.9/§4.12 check 5. sufficiencyOverride bypasses the check
// (IA may carry sufficiency_override: true).
func AcceptsDelivery(system *Record, repo *Record, sufficiencyOverride bool) bool {
	if sufficiencyOverride {
		return true
	}
	if system != nil && system.Status == Sufficient {
		return true
	}
	if repo != nil && repo.Status == Sufficient {
		return true
	}
	return false
}
