// Package version implements the Knowledge Version pointer: monotone
// vMAJOR[.MINOR[.PATCH]] bump semantics, history, and a compact mirror
// of the last 50 entries (spec §3 KnowledgeVersion, §4.9).
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

var versionPattern = regexp.MustCompile(`^v(\d+)(?:\.(\d+)(?:\.(\d+))?)?$`)

const compactMirrorLimit = 50

// HistoryEntry is one bump record.
type HistoryEntry struct {
	V      string `json:"v"`
	At     string `json:"at"`
	Reason string `json:"reason"`
	Scope  string `json:"scope"`
	Notes  string `json:"notes,omitempty"`
}

// KnowledgeVersion is knowledge_version.json.
type KnowledgeVersion struct {
	Version int            `json:"version"`
	Current string         `json:"current"`
	History []HistoryEntry `json:"history"`
}

// CompactMirror is the VERSION.json/.md companion: the last 50 entries.
type CompactMirror struct {
	Version int            `json:"version"`
	Current string         `json:"current"`
	History []HistoryEntry `json:"history"`
}

func parse(v string) (major, minor, patch int, segments int, ok bool) {
	m := versionPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, 0, 0, 0, false
	}
	major, _ = strconv.Atoi(m[1])
	segments = 1
	if m[2] != "" {
		minor, _ = strconv.Atoi(m[2])
		segments = 2
	}
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
		segments = 3
	}
	return major, minor, patch, segments, true
}

func format(major, minor, patch, segments int) string {
	switch segments {
	case 1:
		return fmt.Sprintf("v%d", major)
	case 2:
		return fmt.Sprintf("v%d.%d", major, minor)
	default:
		return fmt.Sprintf("v%d.%d.%d", major, minor, patch)
	}
}

// BumpMajor returns v(M+1) (spec §3: deeper segments dropped).
func BumpMajor(current string) (string, error) {
	major, _, _, _, ok := parse(current)
	if !ok {
		return "", errkit.New(errkit.ErrContractViolation, nil, fmt.Sprintf("invalid version %q", current))
	}
	return format(major+1, 0, 0, 1), nil
}

// BumpMinor: vM -> vM.1; vM.N -> vM.(N+1); deeper segments dropped.
func BumpMinor(current string) (string, error) {
	major, minor, _, segments, ok := parse(current)
	if !ok {
		return "", errkit.New(errkit.ErrContractViolation, nil, fmt.Sprintf("invalid version %q", current))
	}
	if segments == 1 {
		return format(major, 1, 0, 2), nil
	}
	return format(major, minor+1, 0, 2), nil
}

// BumpPatch: vM -> vM.0.1; vM.N -> vM.N.1; vM.N.P -> vM.N.(P+1).
func BumpPatch(current string) (string, error) {
	major, minor, patch, segments, ok := parse(current)
	if !ok {
		return "", errkit.New(errkit.ErrContractViolation, nil, fmt.Sprintf("invalid version %q", current))
	}
	if segments == 1 {
		return format(major, 0, 1, 3), nil
	}
	if segments == 2 {
		return format(major, minor, 1, 3), nil
	}
	return format(major, minor, patch+1, 3), nil
}

// SetExplicit validates toVersion against the version regex and
// records from=<old> into notes when it differs (spec §4.9).
func SetExplicit(current, toVersion string) (string, string, error) {
	if !versionPattern.MatchString(toVersion) {
		return "", "", errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("version %q does not match v<int>[.int[.int]]", toVersion))
	}
	notes := ""
	if toVersion != current {
		notes = fmt.Sprintf("from=%s", current)
	}
	return toVersion, notes, nil
}

// Bump is the callable bump kind (spec §4.9).
type Bump string

const (
	BumpKindMajor Bump = "bump_major"
	BumpKindMinor Bump = "bump_minor"
	BumpKindPatch Bump = "bump_patch"
)

// Apply bumps kv.Current per kind, appends a history entry, and
// returns the updated document (does not persist — callers write
// atomically with Write).
func Apply(kv KnowledgeVersion, kind Bump, scope, reason string, now time.Time) (KnowledgeVersion, error) {
	var next string
	var err error
	switch kind {
	case BumpKindMajor:
		next, err = BumpMajor(kv.Current)
	case BumpKindMinor:
		next, err = BumpMinor(kv.Current)
	case BumpKindPatch:
		next, err = BumpPatch(kv.Current)
	default:
		return kv, errkit.New(errkit.ErrContractViolation, nil, fmt.Sprintf("unknown bump kind %q", kind))
	}
	if err != nil {
		return kv, err
	}
	kv.Current = next
	kv.History = append(kv.History, HistoryEntry{
		V: next, At: now.UTC().Format(time.RFC3339), Reason: reason, Scope: scope,
	})
	return kv, nil
}

// ApplyExplicit sets kv.Current to toVersion directly.
func ApplyExplicit(kv KnowledgeVersion, toVersion, scope, reason string, now time.Time) (KnowledgeVersion, error) {
	next, notes, err := SetExplicit(kv.Current, toVersion)
	if err != nil {
		return kv, err
	}
	kv.Current = next
	kv.History = append(kv.History, HistoryEntry{
		V: next, At: now.UTC().Format(time.RFC3339), Reason: reason, Scope: scope, Notes: notes,
	})
	return kv, nil
}

// Mirror produces the compact mirror: the last 50 history entries.
func Mirror(kv KnowledgeVersion) CompactMirror {
	history := kv.History
	if len(history) > compactMirrorLimit {
		history = history[len(history)-compactMirrorLimit:]
	}
	return CompactMirror{Version: 1, Current: kv.Current, History: append([]HistoryEntry(nil), history...)}
}

// RenderMirrorMD renders VERSION.md from the compact mirror.
func RenderMirrorMD(m CompactMirror) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Knowledge version\n\nCurrent: %s\n\n## History (last %d)\n\n", m.Current, compactMirrorLimit)
	for i := len(m.History) - 1; i >= 0; i-- {
		h := m.History[i]
		fmt.Fprintf(&b, "- %s at %s (%s, scope %s)", h.V, h.At, h.Reason, h.Scope)
		if h.Notes != "" {
			fmt.Fprintf(&b, " [%s]", h.Notes)
		}
		b.WriteString("\n")
	}
	return b.String()
}
