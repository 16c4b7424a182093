package governance

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// WriteFailure writes TRIAGE_FAILED-<fs-safe-ts>.{json,md} under dir,
// the on-filesystem artifact required on any gate rejection (spec §4.12
// "On fail", §7 "always produces a failure artifact").
func WriteFailure(dir string, gateErr error, scope string, now time.Time) (Failure, error) {
	reasonCode := string(errkit.ErrLaneAGovernanceViolation)
	if ce, ok := gateErr.(*errkit.CoreError); ok {
		reasonCode = string(ce.Code)
	}
	f := Failure{
		Version: 1, ReasonCode: reasonCode, Message: gateErr.Error(),
		Scope: scope, CreatedAt: now.UTC().Format(time.RFC3339),
	}
	stem := fmt.Sprintf("TRIAGE_FAILED-%s", fsSafeTimestamp(now))
	data, err := fsatomic.Canonicalize(f, "")
	if err != nil {
		return Failure{}, err
	}
	if err := fsatomic.WriteFile(filepath.Join(dir, stem+".json"), data); err != nil {
		return Failure{}, err
	}
	md := fmt.Sprintf("# Triage failed\n\nScope: %s\nReason: %s\n\n%s\n", f.Scope, f.ReasonCode, f.Message)
	if err := fsatomic.WriteFile(filepath.Join(dir, stem+".md"), []byte(md)); err != nil {
		return Failure{}, err
	}
	return f, nil
}

// LedgerLine renders the single JSON line appended to the lane ledger
// on a gate rejection (spec §4.12).
func LedgerLine(f Failure) string {
	return fmt.Sprintf(`{"event":"triage_governance_rejected","reason_code":%q,"scope":%q,"at":%q}`,
		f.ReasonCode, f.Scope, f.CreatedAt)
}

func fsSafeTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "", "-", "").Replace(t.UTC().Format("2006-01-02T150405Z"))
}
