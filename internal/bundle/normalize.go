package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// textExtensions get CRLF->LF normalization plus a trailing newline
// (spec §4.10 step 3); everything else other than .json passes through
// as raw bytes.
var textExtensions = map[string]bool{
	".md": true, ".txt": true, ".jsonl": true, ".yml": true, ".yaml": true,
	".graphql": true, ".proto": true, ".js": true, ".ts": true, ".tsx": true,
	".jsx": true, ".css": true, ".html": true,
}

// NormalizeFile reads entry.SourcePath and returns normalized bytes per
// the extension rule: .json is decoded and re-serialized through
// canonicalize (internal/fsatomic.Canonicalize in production), text-ish
// extensions get CRLF->LF and a trailing newline, everything else
// passes through unchanged.
func NormalizeFile(entry FileEntry, canonicalize func(decoded any, logicalPath string) ([]byte, error)) ([]byte, error) {
	raw, err := os.ReadFile(entry.SourcePath)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(entry.LogicalPath))
	switch {
	case ext == ".json":
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		return canonicalize(decoded, entry.LogicalPath)
	case textExtensions[ext]:
		return normalizeText(raw), nil
	default:
		return raw, nil
	}
}

func normalizeText(raw []byte) []byte {
	s := strings.ReplaceAll(string(raw), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return []byte(s)
}
