package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogMergeEventRejectsMissingRepoID(t *testing.T) {
	_, err := LogMergeEvent(t.TempDir(), LogMergeEventInput{PRNumber: 1, MergeCommitSHA: "abcdefg"}, time.Now(), false)
	if err == nil {
		t.Fatalf("expected rejection for missing repo_id")
	}
}

func TestLogMergeEventRejectsBadPRNumber(t *testing.T) {
	_, err := LogMergeEvent(t.TempDir(), LogMergeEventInput{RepoID: "svc-a", PRNumber: 0, MergeCommitSHA: "abcdefg"}, time.Now(), false)
	if err == nil {
		t.Fatalf("expected rejection for pr_number <= 0")
	}
}

func TestLogMergeEventRejectsShortSHA(t *testing.T) {
	_, err := LogMergeEvent(t.TempDir(), LogMergeEventInput{RepoID: "svc-a", PRNumber: 1, MergeCommitSHA: "abc"}, time.Now(), false)
	if err == nil {
		t.Fatalf("expected rejection for short merge_commit_sha")
	}
}

func TestLogMergeEventNormalizesAndSortsAffectedPaths(t *testing.T) {
	dir := t.TempDir()
	in := LogMergeEventInput{
		RepoID: "svc-a", PRNumber: 42, MergeCommitSHA: "abcdef1234",
		AffectedPaths: []string{"b.go", "a.go", "a.go", ""},
		Timestamp:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	ev, err := LogMergeEvent(dir, in, in.Timestamp, false)
	if err != nil {
		t.Fatalf("LogMergeEvent: %v", err)
	}
	if len(ev.AffectedPaths) != 2 || ev.AffectedPaths[0] != "a.go" || ev.AffectedPaths[1] != "b.go" {
		t.Fatalf("expected deduped sorted paths, got %v", ev.AffectedPaths)
	}
	if !strings.HasPrefix(ev.ID, "EV-svc-a-20260101-000000-") {
		t.Fatalf("unexpected id shape: %s", ev.ID)
	}
}

func TestLogMergeEventDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := LogMergeEvent(dir, LogMergeEventInput{RepoID: "svc-a", PRNumber: 1, MergeCommitSHA: "abcdefg"}, now, true); err != nil {
		t.Fatalf("LogMergeEvent dry run: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files written on dry run, got %v", entries)
	}
}

func TestLogMergeEventAppendsToSegmentFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if _, err := LogMergeEvent(dir, LogMergeEventInput{RepoID: "svc-a", PRNumber: 1, MergeCommitSHA: "abcdefg"}, now, false); err != nil {
		t.Fatalf("LogMergeEvent: %v", err)
	}
	if _, err := LogMergeEvent(dir, LogMergeEventInput{RepoID: "svc-b", PRNumber: 2, MergeCommitSHA: "bcdefgh"}, now, false); err != nil {
		t.Fatalf("LogMergeEvent: %v", err)
	}
	segmentPath := filepath.Join(dir, SegmentName(now))
	data, err := os.ReadFile(segmentPath)
	if err != nil {
		t.Fatalf("expected segment file to exist: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines appended, got %d", len(lines))
	}
}

func TestReadAllSurfacesWarningsForInvalidLines(t *testing.T) {
	dir := t.TempDir()
	segment := "20260101-000000.jsonl"
	content := `{"version":1,"id":"EV-a","type":"merge","repo_id":"svc-a","timestamp":"2026-01-01T00:00:00Z"}
not json
{"version":1,"type":"other"}
`
	if err := os.WriteFile(filepath.Join(dir, segment), []byte(content), 0o644); err != nil {
		t.Fatalf("write segment: %v", err)
	}
	events, warnings, err := ReadAll(dir)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 valid event, got %d", len(events))
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %+v", len(warnings), warnings)
	}
}

func TestSummarizePicksLatestByTimestampThenID(t *testing.T) {
	events := []MergeEvent{
		{ID: "EV-a-1", RepoID: "svc-a", MergeCommitSHA: "sha1", PRNumber: 1, Timestamp: "2026-01-01T00:00:00Z"},
		{ID: "EV-a-2", RepoID: "svc-a", MergeCommitSHA: "sha2", PRNumber: 2, Timestamp: "2026-01-02T00:00:00Z"},
		{ID: "EV-a-0", RepoID: "svc-a", MergeCommitSHA: "sha0", PRNumber: 0, Timestamp: "2026-01-02T00:00:00Z"},
	}
	s := Summarize(events, time.Now())
	if len(s.MergeEvents) != 1 {
		t.Fatalf("expected one repo in summary, got %d", len(s.MergeEvents))
	}
	latest := s.MergeEvents[0]
	if latest.LatestMergeCommit != "sha2" {
		t.Fatalf("expected tie broken by greater id, got %+v", latest)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cp, err := LoadCheckpoint(dir, "freshness-policy")
	if err != nil || cp.LastReadSegment != "" {
		t.Fatalf("expected default checkpoint, got %+v, %v", cp, err)
	}
	cp.LastReadSegment = "20260101-000000.jsonl"
	cp.LastReadOffset = 128
	if err := SaveCheckpoint(dir, cp, time.Now()); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	loaded, err := LoadCheckpoint(dir, "freshness-policy")
	if err != nil || loaded.LastReadSegment != "20260101-000000.jsonl" || loaded.LastReadOffset != 128 {
		t.Fatalf("checkpoint roundtrip mismatch: %+v, %v", loaded, err)
	}
}

func TestWriteSummaryWritesBothLocations(t *testing.T) {
	dir := t.TempDir()
	laneAPath, knowledgeRootPath := DefaultSummaryPaths(filepath.Join(dir, "lane_a"), filepath.Join(dir, "knowledge"))
	if err := WriteSummary(laneAPath, knowledgeRootPath, Summary{Version: 1}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if _, err := os.Stat(laneAPath); err != nil {
		t.Fatalf("expected lane_a summary file: %v", err)
	}
	if _, err := os.Stat(knowledgeRootPath); err != nil {
		t.Fatalf("expected knowledge_root summary file: %v", err)
	}
}
