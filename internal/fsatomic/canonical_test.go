package fsatomic

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCanonicalizeSortsKeysAndRewritesTimestamps(t *testing.T) {
	doc := map[string]any{
		"b":            1,
		"a":            2,
		"generated_at": "2026-07-30T00:00:00Z",
	}
	out, err := Canonicalize(doc, "views/integration_map.json")
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	s := string(out)
	if strings.Index(s, `"a"`) > strings.Index(s, `"b"`) {
		t.Fatalf("keys not sorted: %s", s)
	}
	if !strings.Contains(s, sentinelTimestamp) {
		t.Fatalf("timestamp not rewritten: %s", s)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Fatalf("missing trailing newline")
	}
}

func TestCanonicalizeScanJSONUsesScanSentinel(t *testing.T) {
	doc := map[string]any{"scanned_at": "2026-01-01T00:00:00Z"}
	out, err := Canonicalize(doc, "ssot/repos/svc-a/scan.json")
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if !strings.Contains(string(out), sentinelScanTimestamp) {
		t.Fatalf("expected scan sentinel, got %s", out)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	doc := map[string]any{
		"nested": map[string]any{"z": 1, "a": []any{3, 2, 1}},
		"list":   []any{"x", "y"},
	}
	first, err := Canonicalize(doc, "x.json")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	var reparsed any
	if err := json.Unmarshal(first, &reparsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := Canonicalize(reparsed, "x.json")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("canonicalize(parse(canonicalize(x))) != canonicalize(x):\n%s\n---\n%s", first, second)
	}
}
