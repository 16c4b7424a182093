package version

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// Load reads knowledge_version.json, defaulting to v1 with empty
// history when the file does not yet exist (spec §4.9: the pointer
// starts at v1 for a freshly-initialized project).
func Load(path string) (KnowledgeVersion, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return KnowledgeVersion{Version: 1, Current: "v1"}, nil
	}
	if err != nil {
		return KnowledgeVersion{}, err
	}
	var kv KnowledgeVersion
	if err := json.Unmarshal(data, &kv); err != nil {
		return KnowledgeVersion{}, err
	}
	return kv, nil
}

// Write persists knowledge_version.json and the compact mirror
// (VERSION.json + VERSION.md, last 50 entries) atomically.
func Write(versionPath, mirrorJSONPath, mirrorMDPath string, kv KnowledgeVersion) error {
	data, err := fsatomic.Canonicalize(kv, versionPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(versionPath, data); err != nil {
		return err
	}

	mirror := Mirror(kv)
	mirrorData, err := fsatomic.Canonicalize(mirror, mirrorJSONPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(mirrorJSONPath, mirrorData); err != nil {
		return err
	}
	return fsatomic.WriteFile(mirrorMDPath, []byte(RenderMirrorMD(mirror)))
}

// DefaultPaths mirrors the layout convention used across the other
// packages: <opsRoot>/ai/lane_a/knowledge_version.json plus its
// VERSION.json/.md compact mirror siblings.
func DefaultPaths(laneADir string) (versionPath, mirrorJSONPath, mirrorMDPath string) {
	return filepath.Join(laneADir, "knowledge_version.json"),
		filepath.Join(laneADir, "VERSION.json"),
		filepath.Join(laneADir, "VERSION.md")
}
