package sufficiency

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// fileName derives the on-disk key for (scope, knowledge_version):
// sufficiency/<scope>__<version>.json, with path-unsafe characters in
// scope ("repo:<id>" contains a colon) replaced.
func fileName(scope, knowledgeVersion string) string {
	safeScope := strings.NewReplacer(":", "-", "/", "-").Replace(scope)
	return safeScope + "__" + knowledgeVersion + ".json"
}

// Load reads the record for (scope, knowledge_version); returns nil,
// nil when no record has ever been captured for that key.
func Load(dir, scope, knowledgeVersion string) (*Record, error) {
	path := filepath.Join(dir, fileName(scope, knowledgeVersion))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save validates monotonicity against the existing record (if any) and
// writes the new record atomically and canonically.
func Save(dir string, r Record) error {
	prior, err := Load(dir, r.Scope, r.KnowledgeVersion)
	if err != nil {
		return err
	}
	if err := Transition(prior, r); err != nil {
		return err
	}
	path := filepath.Join(dir, fileName(r.Scope, r.KnowledgeVersion))
	data, err := fsatomic.Canonicalize(r, path)
	if err != nil {
		return err
	}
	return fsatomic.WriteFile(path, data)
}
