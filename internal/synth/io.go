package synth

import (
	"path/filepath"

	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// Write emits integration.json, gaps.json, and integration.md
// atomically under dir.
func Write(dir string, integration *Integration, gaps *Gaps) error {
	integrationPath := filepath.Join(dir, "integration.json")
	integrationData, err := fsatomic.Canonicalize(integration, integrationPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(integrationPath, integrationData); err != nil {
		return err
	}

	gapsPath := filepath.Join(dir, "gaps.json")
	gapsData, err := fsatomic.Canonicalize(gaps, gapsPath)
	if err != nil {
		return err
	}
	if err := fsatomic.WriteFile(gapsPath, gapsData); err != nil {
		return err
	}

	return fsatomic.WriteFile(filepath.Join(dir, "integration.md"), []byte(Render(integration, gaps)))
}
