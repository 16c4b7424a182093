package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LineWarning records a segment line that failed validation: summary
// consumption treats these as warnings, not failures (spec §4.11).
type LineWarning struct {
	Segment string
	Line    int
	Reason  string
}

func listSegments(segmentsDir string) ([]string, error) {
	entries, err := os.ReadDir(segmentsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var segments []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		segments = append(segments, e.Name())
	}
	sort.Strings(segments)
	return segments, nil
}

// readSegment parses every line of segment, returning valid merge
// events and warnings for lines that don't validate.
func readSegment(segmentsDir, segment string) ([]MergeEvent, []LineWarning, error) {
	f, err := os.Open(filepath.Join(segmentsDir, segment))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var events []MergeEvent
	var warnings []LineWarning
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev MergeEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			warnings = append(warnings, LineWarning{Segment: segment, Line: lineNo, Reason: "malformed json"})
			continue
		}
		if ev.Type != "merge" {
			warnings = append(warnings, LineWarning{Segment: segment, Line: lineNo, Reason: "not a merge event"})
			continue
		}
		if ev.RepoID == "" || ev.ID == "" {
			warnings = append(warnings, LineWarning{Segment: segment, Line: lineNo, Reason: "missing repo_id or id"})
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, warnings, err
	}
	return events, warnings, nil
}

// ReadAll reads every segment under segmentsDir in file-sorted (== time)
// order and returns every valid event plus every warning encountered.
func ReadAll(segmentsDir string) ([]MergeEvent, []LineWarning, error) {
	segments, err := listSegments(segmentsDir)
	if err != nil {
		return nil, nil, err
	}
	var events []MergeEvent
	var warnings []LineWarning
	for _, segment := range segments {
		segEvents, segWarnings, err := readSegment(segmentsDir, segment)
		if err != nil {
			return events, warnings, err
		}
		events = append(events, segEvents...)
		warnings = append(warnings, segWarnings...)
	}
	return events, warnings, nil
}

// latestWins implements the tie-break rule: greater timestamp, then
// greater id lexically (spec §4.11).
func latestWins(candidate, current MergeEvent) bool {
	if candidate.Timestamp != current.Timestamp {
		return candidate.Timestamp > current.Timestamp
	}
	return candidate.ID > current.ID
}

// Summarize computes the latest merge event per repo_id from events,
// already read in ascending time order.
func Summarize(events []MergeEvent, now time.Time) Summary {
	latest := make(map[string]MergeEvent)
	for _, ev := range events {
		cur, ok := latest[ev.RepoID]
		if !ok || latestWins(ev, cur) {
			latest[ev.RepoID] = ev
		}
	}
	repoIDs := make([]string, 0, len(latest))
	for repoID := range latest {
		repoIDs = append(repoIDs, repoID)
	}
	sort.Strings(repoIDs)

	s := Summary{Version: 1, GeneratedAt: now.UTC().Format(time.RFC3339)}
	for _, repoID := range repoIDs {
		ev := latest[repoID]
		s.MergeEvents = append(s.MergeEvents, RepoLatest{
			RepoID: repoID, LatestMergeCommit: ev.MergeCommitSHA,
			LatestPRNumber: ev.PRNumber, LatestTimestamp: ev.Timestamp,
		})
	}
	return s
}
