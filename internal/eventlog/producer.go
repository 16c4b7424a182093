package eventlog

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

const segmentTimeLayout = "20060102-150405"

// SegmentName returns the UTC segment filename for now (spec §4.11).
func SegmentName(now time.Time) string {
	return now.UTC().Format(segmentTimeLayout) + ".jsonl"
}

func segmentTimestampToken(segment string) string {
	name := segment
	if ext := filepath.Ext(name); ext == ".jsonl" {
		name = name[:len(name)-len(ext)]
	}
	return name
}

func randToken(n int) (string, error) {
	buf := make([]byte, n/2+n%2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}

// LogMergeEventInput is the producer's event before shape normalization.
type LogMergeEventInput struct {
	RepoID         string
	PRNumber       int
	MergeCommitSHA string
	BaseBranch     string
	AffectedPaths  []string
	Timestamp      time.Time

	WorkID       string
	PR           *PR
	MergeSHA     string
	ChangedPaths []string
	Obligations  []string
	RiskLevel    string
	QAWaiver     *QAWaiver
}

// validate enforces the MergeEvent shape (spec §3): repo_id required,
// pr_number > 0, merge_commit_sha at least 7 chars.
func (in LogMergeEventInput) validate() error {
	if in.RepoID == "" {
		return errkit.New(errkit.ErrContractViolation, nil, "merge event missing repo_id")
	}
	if in.PRNumber <= 0 {
		return errkit.New(errkit.ErrContractViolation, nil, "merge event pr_number must be > 0")
	}
	if len(in.MergeCommitSHA) < 7 {
		return errkit.New(errkit.ErrContractViolation, nil, "merge event merge_commit_sha must be at least 7 characters")
	}
	return nil
}

func normalizeAffectedPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// LogMergeEvent validates in, normalizes affected_paths, computes a
// stable id, and appends one JSON line to the segment for now under
// segmentsDir, serialized behind a flock so concurrent producers don't
// interleave partial writes (spec §4.11, grounded on the teacher's
// flock-guarded JSONL append writer).
func LogMergeEvent(segmentsDir string, in LogMergeEventInput, now time.Time, dryRun bool) (MergeEvent, error) {
	if err := in.validate(); err != nil {
		return MergeEvent{}, err
	}

	segment := SegmentName(now)
	rnd, err := randToken(8)
	if err != nil {
		return MergeEvent{}, err
	}
	id := fmt.Sprintf("EV-%s-%s-%s", in.RepoID, segmentTimestampToken(segment), rnd)

	ev := MergeEvent{
		Version: 1, ID: id, Type: "merge",
		RepoID: in.RepoID, PRNumber: in.PRNumber, MergeCommitSHA: in.MergeCommitSHA,
		BaseBranch: in.BaseBranch, AffectedPaths: normalizeAffectedPaths(in.AffectedPaths),
		Timestamp: in.Timestamp.UTC().Format(time.RFC3339),
		WorkID:    in.WorkID, PR: in.PR, MergeSHA: in.MergeSHA,
		ChangedPaths: normalizeAffectedPaths(in.ChangedPaths),
		Obligations:  in.Obligations, RiskLevel: in.RiskLevel, QAWaiver: in.QAWaiver,
	}

	if dryRun {
		return ev, nil
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return MergeEvent{}, err
	}
	line = append(trimTrailingNewline(line), '\n')

	if err := os.MkdirAll(segmentsDir, 0o755); err != nil {
		return MergeEvent{}, err
	}
	segmentPath := filepath.Join(segmentsDir, segment)
	if err := appendLocked(segmentPath, line); err != nil {
		return MergeEvent{}, err
	}
	return ev, nil
}

func trimTrailingNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// appendLocked opens segmentPath append-only, takes an exclusive flock
// for the duration of the write, and releases it on return.
func appendLocked(segmentPath string, line []byte) error {
	f, err := os.OpenFile(segmentPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return err
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	if _, err := f.Write(line); err != nil {
		return err
	}
	return f.Sync()
}
