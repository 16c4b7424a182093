package freshness

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// WriteStaleness writes staleness.json atomically and canonically.
func WriteStaleness(path string, s Staleness) error {
	data, err := fsatomic.Canonicalize(s, path)
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(path, data)
}

// WriteRefreshHint writes one RH-<fs-safe-ts>__<scope>.json under dir
// (spec §6 refresh hints).
func WriteRefreshHint(dir string, scope string, reasons []string, now time.Time) error {
	hint := RefreshHint{Version: 1, Scope: scope, Reasons: reasons, GeneratedAt: now.UTC().Format(time.RFC3339)}
	name := fmt.Sprintf("RH-%s__%s.json", fsSafeTimestamp(now), fsSafeScope(scope))
	data, err := fsatomic.Canonicalize(hint, "")
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(filepath.Join(dir, name), data)
}

// WriteDecisionPacket writes DP-<fs-safe-ts>__<scope>__<blocking_state>.{json,md}.
func WriteDecisionPacket(dir string, dp DecisionPacket) error {
	stem := fmt.Sprintf("DP-%s__%s__%s", fsSafeTimestamp(timeOrNow(dp.CreatedAt)), fsSafeScope(dp.Scope), dp.BlockingState)
	data, err := fsatomic.Canonicalize(dp, "")
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(filepath.Join(dir, stem+".json"), data); err != nil {
		return err
	}
	return fsatomic.WriteFile(filepath.Join(dir, stem+".md"), []byte(renderDecisionPacket(dp)))
}

func renderDecisionPacket(dp DecisionPacket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Decision packet %s\n\n", dp.DecisionID)
	fmt.Fprintf(&b, "Scope: %s\nBlocking state: %s\nTrigger: %s\nStatus: %s\n\n", dp.Scope, dp.BlockingState, dp.Trigger, dp.Status)
	fmt.Fprintf(&b, "## Context\n\n%s\n\n", dp.ContextSummary)
	fmt.Fprintf(&b, "## Question\n\n%s (expects: %s)\n", dp.Question, dp.ExpectedAnswerType)
	return b.String()
}

func fsSafeTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "", "-", "").Replace(t.UTC().Format("2006-01-02T150405Z"))
}

func fsSafeScope(scope string) string {
	return strings.NewReplacer(":", "-", "/", "-").Replace(scope)
}

func timeOrNow(rfc3339 string) time.Time {
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t
	}
	return time.Time{}
}
