package freshness

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

// Override carries the explicit bypass an operator supplies (spec
// §4.8 "Explicit override").
type Override struct {
	Force  bool
	By     string
	Reason string
}

// Outcome is what Guard decided when the scope is stale: either the
// staleness refusal sticks (err non-nil, decision packet written), or it
// was overridden and a stale_override ledger line must be appended by
// the caller. Guard returns a nil Outcome and nil error for a fresh scope.
type Outcome struct {
	LedgerLine string
}

// Guard refuses an operation when scope staleness blocks it, writing a
// Decision Packet; an explicit Override bypasses the refusal and asks
// the caller to append a stale_override ledger line (spec §4.8).
func Guard(decisionDir string, staleness Staleness, trigger string, override Override, now time.Time) (*Outcome, error) {
	if !staleness.Stale {
		return nil, nil
	}
	if override.Force {
		line := fmt.Sprintf(`{"event":"stale_override","scope":%q,"by":%q,"reason":%q,"at":%q}`,
			staleness.Scope, override.By, override.Reason, now.UTC().Format(time.RFC3339))
		slog.Warn("staleness guard overridden", "scope", staleness.Scope, "trigger", trigger, "by", override.By, "reason", override.Reason)
		return &Outcome{LedgerLine: line}, nil
	}

	blockingState := "hard_stale"
	if !staleness.HardStale {
		blockingState = "soft_stale"
	}
	dp := DecisionPacket{
		Version:                 1,
		DecisionID:              uuid.NewString(),
		Scope:                   staleness.Scope,
		BlockingState:           blockingState,
		Trigger:                 trigger,
		ContextSummary:          fmt.Sprintf("scope %s is stale: %s", staleness.Scope, strings.Join(staleness.Reasons, ", ")),
		Question:                "refresh knowledge for this scope, or explicitly override the staleness guard?",
		ExpectedAnswerType:      "refresh|override",
		Constraints:             []string{},
		Blocks:                  []string{trigger},
		AssumptionsIfUnanswered: []string{"knowledge for this scope remains unrefreshed"},
		CreatedAt:               now.UTC().Format(time.RFC3339),
		Status:                  "open",
	}
	if err := WriteDecisionPacket(decisionDir, dp); err != nil {
		return nil, err
	}
	slog.Warn("staleness guard refused", "scope", staleness.Scope, "trigger", trigger,
		"blocking_state", blockingState, "decision_id", dp.DecisionID)
	return nil, errkit.New(errkit.ErrKnowledgeStale, nil,
		fmt.Sprintf("scope %s is stale (%s); decision packet %s written", staleness.Scope, blockingState, dp.DecisionID))
}
