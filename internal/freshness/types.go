// Package freshness classifies each scope ("system" or "repo:<id>") as
// fresh, soft-stale, or hard-stale and records the side effects of
// that classification: the staleness view, per-scope refresh hints,
// and decision packets when a guard refuses an operation (spec §4.8).
package freshness

// Staleness is staleness.json, the authoritative per-scope view.
type Staleness struct {
	Version     int      `json:"version"`
	Scope       string   `json:"scope"`
	Stale       bool     `json:"stale"`
	HardStale   bool     `json:"hard_stale"`
	Reasons     []string `json:"reasons"`
	StaleRepos  []string `json:"stale_repos"`
	GeneratedAt string   `json:"generated_at"`
}

// RefreshHint is one RH-*.json document.
type RefreshHint struct {
	Version     int      `json:"version"`
	Scope       string   `json:"scope"`
	Reasons     []string `json:"reasons"`
	GeneratedAt string   `json:"generated_at"`
}

// DecisionPacket is DP-*.json (spec §6 "Decision packet").
type DecisionPacket struct {
	Version                  int      `json:"version"`
	DecisionID                string   `json:"decision_id"`
	Scope                     string   `json:"scope"`
	BlockingState             string   `json:"blocking_state"`
	Trigger                   string   `json:"trigger"`
	ContextSummary            string   `json:"context_summary"`
	Question                  string   `json:"question"`
	ExpectedAnswerType        string   `json:"expected_answer_type"`
	Constraints               []string `json:"constraints"`
	Blocks                    []string `json:"blocks"`
	AssumptionsIfUnanswered   []string `json:"assumptions_if_unanswered"`
	CreatedAt                 string   `json:"created_at"`
	Status                    string   `json:"status"`
}
