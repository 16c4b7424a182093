package synth

import (
	"testing"
	"time"

	"github.com/deliverygov/knowledgectl/internal/evidence"
	"github.com/deliverygov/knowledgectl/internal/knowledgescan"
)

func TestSynthesizeDerivesIntegrationMapAndGaps(t *testing.T) {
	scans := map[string]*knowledgescan.Scan{
		"svc-a": {
			RepoID: "svc-a", ScannedAt: "2026-01-01T00:00:00Z", ScanVersion: 1,
			Facts: []evidence.Fact{
				{FactID: "F_1", Claim: "Entrypoint: cmd/svc-a/main.go"},
				{FactID: "F_2", Claim: "API contract file: api/openapi.yaml"},
			},
		},
		"svc-b": {
			RepoID: "svc-b", ScannedAt: "2026-01-01T00:00:00Z", ScanVersion: 2,
			Facts: []evidence.Fact{
				{FactID: "F_3", Claim: "Entrypoint: cmd/svc-b/main.go"},
			},
			Unknowns: []knowledgescan.Unknown{{Text: "no contract file", EvidenceID: "EVID_x"}},
		},
	}

	integration, gaps, err := Synthesize([]string{"svc-a", "svc-b"}, scans, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(integration.IntegrationMap.Repos) != 2 {
		t.Fatalf("expected 2 repos in integration map, got %d", len(integration.IntegrationMap.Repos))
	}
	if len(gaps.Gaps) != 1 || gaps.Gaps[0].RepoID != "svc-b" {
		t.Fatalf("expected svc-b missing_contract gap, got %+v", gaps.Gaps)
	}
	if len(integration.KnownUnknowns) != 1 {
		t.Fatalf("expected one known unknown, got %v", integration.KnownUnknowns)
	}
}

func TestSynthesizeAbortsOnMissingScan(t *testing.T) {
	scans := map[string]*knowledgescan.Scan{"svc-a": {RepoID: "svc-a"}}
	if _, _, err := Synthesize([]string{"svc-a", "svc-b"}, scans, time.Now()); err == nil {
		t.Fatalf("expected abort when svc-b scan is missing")
	}
}
