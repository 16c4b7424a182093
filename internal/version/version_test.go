package version

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBumpMajorDropsDeeperSegments(t *testing.T) {
	got, err := BumpMajor("v2.4.1")
	if err != nil || got != "v3" {
		t.Fatalf("BumpMajor(v2.4.1) = %q, %v; want v3", got, err)
	}
}

func TestBumpMinorFromBareMajor(t *testing.T) {
	got, err := BumpMinor("v1")
	if err != nil || got != "v1.1" {
		t.Fatalf("BumpMinor(v1) = %q, %v; want v1.1", got, err)
	}
}

func TestBumpMinorIncrementsAndDropsPatch(t *testing.T) {
	got, err := BumpMinor("v1.4.9")
	if err != nil || got != "v1.5" {
		t.Fatalf("BumpMinor(v1.4.9) = %q, %v; want v1.5", got, err)
	}
}

func TestBumpPatchFromBareMajor(t *testing.T) {
	got, err := BumpPatch("v2")
	if err != nil || got != "v2.0.1" {
		t.Fatalf("BumpPatch(v2) = %q, %v; want v2.0.1", got, err)
	}
}

func TestBumpPatchFromMajorMinor(t *testing.T) {
	got, err := BumpPatch("v2.3")
	if err != nil || got != "v2.3.1" {
		t.Fatalf("BumpPatch(v2.3) = %q, %v; want v2.3.1", got, err)
	}
}

func TestBumpPatchIncrementsLastSegment(t *testing.T) {
	got, err := BumpPatch("v2.3.5")
	if err != nil || got != "v2.3.6" {
		t.Fatalf("BumpPatch(v2.3.5) = %q, %v; want v2.3.6", got, err)
	}
}

func TestBumpRejectsMalformedVersion(t *testing.T) {
	if _, err := BumpMajor("2.0"); err == nil {
		t.Fatalf("expected error for malformed version")
	}
}

func TestSetExplicitRejectsInvalidFormat(t *testing.T) {
	if _, _, err := SetExplicit("v1", "version-2"); err == nil {
		t.Fatalf("expected error for invalid explicit version")
	}
}

func TestSetExplicitRecordsFromNote(t *testing.T) {
	next, notes, err := SetExplicit("v1", "v5.2")
	if err != nil || next != "v5.2" || notes != "from=v1" {
		t.Fatalf("SetExplicit = %q, %q, %v", next, notes, err)
	}
}

func TestApplyAppendsHistoryEntry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv := KnowledgeVersion{Version: 1, Current: "v1"}
	kv, err := Apply(kv, BumpKindMinor, "system", "knowledge_scan", now)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if kv.Current != "v1.1" || len(kv.History) != 1 || kv.History[0].Scope != "system" {
		t.Fatalf("unexpected kv after apply: %+v", kv)
	}
}

func TestMirrorTruncatesToLast50(t *testing.T) {
	kv := KnowledgeVersion{Current: "v60"}
	for i := 0; i < 60; i++ {
		kv.History = append(kv.History, HistoryEntry{V: "vX"})
	}
	m := Mirror(kv)
	if len(m.History) != compactMirrorLimit {
		t.Fatalf("expected mirror capped at %d entries, got %d", compactMirrorLimit, len(m.History))
	}
}

func TestWriteProducesVersionAndMirrorFiles(t *testing.T) {
	dir := t.TempDir()
	versionPath, mirrorJSONPath, mirrorMDPath := DefaultPaths(dir)
	kv, err := Apply(KnowledgeVersion{Version: 1, Current: "v1"}, BumpKindMajor, "system", "manual", time.Now())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := Write(versionPath, mirrorJSONPath, mirrorMDPath, kv); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(versionPath)
	if err != nil || loaded.Current != "v2" {
		t.Fatalf("Load roundtrip = %+v, %v", loaded, err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err != nil {
		t.Fatalf("Load on missing file should default, got error: %v", err)
	}
}
