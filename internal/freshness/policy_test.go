package freshness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deliverygov/knowledgectl/internal/config"
)

func TestCheckRepoFreshWhenNothingChanged(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	in := RepoCheckInput{
		RepoID: "svc-a", CurrentHeadSHA: "abc", LastScanCommitSHA: "abc",
		ScannedAt: now.Add(-time.Hour),
	}
	r := CheckRepo(in, config.DefaultProjectConfig().Freshness, now)
	if r.Stale {
		t.Fatalf("expected fresh, got %+v", r)
	}
}

func TestCheckRepoSoftStaleWithinGrace(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	in := RepoCheckInput{
		RepoID: "svc-a", CurrentHeadSHA: "def", LastScanCommitSHA: "abc",
		ScannedAt: now.Add(-30 * time.Minute),
	}
	r := CheckRepo(in, config.DefaultProjectConfig().Freshness, now)
	if !r.Stale || r.HardStale {
		t.Fatalf("expected soft stale, got %+v", r)
	}
}

func TestCheckRepoHardStaleAfterGrace(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	in := RepoCheckInput{
		RepoID: "svc-a", CurrentHeadSHA: "def", LastScanCommitSHA: "abc",
		ScannedAt: now.Add(-3 * time.Hour),
	}
	r := CheckRepo(in, config.DefaultProjectConfig().Freshness, now)
	if !r.Stale || !r.HardStale {
		t.Fatalf("expected hard stale past grace window, got %+v", r)
	}
}

func TestCheckRepoHardStaleOnExcessMergeEvents(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := make([]time.Time, 5)
	for i := range events {
		events[i] = now.Add(-time.Minute)
	}
	in := RepoCheckInput{
		RepoID: "svc-a", CurrentHeadSHA: "abc", LastScanCommitSHA: "abc",
		ScannedAt: now.Add(-time.Minute), MergeEventTimestamps: events,
	}
	r := CheckRepo(in, config.DefaultProjectConfig().Freshness, now)
	if !r.Stale || !r.HardStale {
		t.Fatalf("expected hard stale from excess merge events, got %+v", r)
	}
}

func TestAggregateSystemStaleIfAnyRepoStale(t *testing.T) {
	results := []RepoResult{
		{RepoID: "svc-a"},
		{RepoID: "svc-b", Stale: true, HardStale: true, Reasons: []string{"svc-b:head_moved"}},
	}
	s := AggregateSystem(results, time.Now())
	if !s.Stale || !s.HardStale || len(s.StaleRepos) != 1 {
		t.Fatalf("unexpected system staleness: %+v", s)
	}
}

func TestGuardWritesDecisionPacketWhenNotOverridden(t *testing.T) {
	dir := t.TempDir()
	staleness := Staleness{Scope: "system", Stale: true, HardStale: true, Reasons: []string{"head_moved"}}
	outcome, err := Guard(dir, staleness, "bundle", Override{}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatalf("expected refusal")
	}
	if outcome != nil {
		t.Fatalf("expected nil outcome on refusal")
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected a .json and .md decision packet written, got %v err=%v", entries, err)
	}
}

func TestGuardBypassesWithOverride(t *testing.T) {
	dir := t.TempDir()
	staleness := Staleness{Scope: "system", Stale: true}
	outcome, err := Guard(dir, staleness, "bundle", Override{Force: true, By: "op", Reason: "urgent"}, time.Now())
	if err != nil {
		t.Fatalf("expected override to bypass refusal: %v", err)
	}
	if outcome == nil || outcome.LedgerLine == "" {
		t.Fatalf("expected a stale_override ledger line")
	}
}

func TestGuardAllowsFreshScope(t *testing.T) {
	outcome, err := Guard(t.TempDir(), Staleness{Scope: "system"}, "bundle", Override{}, time.Now())
	if err != nil || outcome != nil {
		t.Fatalf("expected no-op for fresh scope, got outcome=%v err=%v", outcome, err)
	}
}

func TestWriteStalenessRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staleness.json")
	if err := WriteStaleness(path, Staleness{Version: 1, Scope: "system"}); err != nil {
		t.Fatalf("WriteStaleness: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected staleness.json to exist: %v", err)
	}
}
