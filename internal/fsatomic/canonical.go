package fsatomic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// volatileTimestampKeys is the closed set of keys whose values are
// rewritten to a fixed sentinel before hashing, so content hashes never
// depend on wall-clock time (spec §4.1, §5 "determinism discipline").
var volatileTimestampKeys = map[string]bool{
	"generated_at": true,
	"captured_at":  true,
	"scanned_at":   true,
	"updated_at":   true,
	"last_seen_at": true,
	"run_at":       true,
	"created_at":   true,
}

const sentinelTimestamp = "1970-01-01T00:00:00.000Z"
const sentinelScanTimestamp = "19700101_000000000"

// Canonicalize is the single serializer used for every bundle input and
// manifest: it recursively sorts object keys, rewrites volatile
// timestamp keys to a fixed constant, and emits 2-space-indented JSON
// with a trailing newline. logicalPath selects the scan.json timestamp
// variant (spec §4.1 (b)).
func Canonicalize(v any, logicalPath string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode for canonicalization: %w", err)
	}
	scanScope := strings.HasSuffix(logicalPath, "/scan.json") || logicalPath == "scan.json"
	rewritten := rewriteTimestamps(decoded, scanScope)

	var buf bytes.Buffer
	if err := encodeSorted(&buf, rewritten, 0); err != nil {
		return nil, fmt.Errorf("encode canonical json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func rewriteTimestamps(v any, scanScope bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if volatileTimestampKeys[k] {
				if k == "scanned_at" && scanScope {
					out[k] = sentinelScanTimestamp
				} else {
					out[k] = sentinelTimestamp
				}
				continue
			}
			out[k] = rewriteTimestamps(val, scanScope)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = rewriteTimestamps(val, scanScope)
		}
		return out
	default:
		return v
	}
}

// encodeSorted writes v as indented JSON with lexically sorted object
// keys at every nesting level.
func encodeSorted(buf *bytes.Buffer, v any, indent int) error {
	pad := strings.Repeat("  ", indent)
	childPad := strings.Repeat("  ", indent+1)
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			buf.WriteString("{}")
			return nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteString("{\n")
		for i, k := range keys {
			buf.WriteString(childPad)
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteString(": ")
			if err := encodeSorted(buf, t[k], indent+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(pad + "}")
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range t {
			buf.WriteString(childPad)
			if err := encodeSorted(buf, item, indent+1); err != nil {
				return err
			}
			if i < len(t)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(pad + "]")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
