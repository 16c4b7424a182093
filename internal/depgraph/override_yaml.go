package depgraph

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deliverygov/knowledgectl/internal/errkit"
	"github.com/deliverygov/knowledgectl/internal/fsatomic"
)

// overrideYAML mirrors Override but is authored by hand, so it carries
// yaml tags instead of json tags (spec §4.4: the override file is a
// human-reviewed artifact, not a machine-generated one).
type overrideYAML struct {
	Version             int               `yaml:"version"`
	Status              OverrideStatus    `yaml:"status"`
	ApprovedBy          string            `yaml:"approved_by,omitempty"`
	ApprovedAt          string            `yaml:"approved_at,omitempty"`
	AddEdges            []Edge            `yaml:"add_edges,omitempty"`
	RemoveEdges         []Edge            `yaml:"remove_edges,omitempty"`
	AddExternalProjects []ExternalProject `yaml:"add_external_projects,omitempty"`
	Metadata            map[string]string `yaml:"metadata,omitempty"`
}

// LoadOverrideYAML reads the human-authored dependency_graph.override.yaml
// source file. A missing file yields a pending override with no edges,
// matching LoadOverride's JSON counterpart.
func LoadOverrideYAML(path string) (Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Override{Version: 1, Status: StatusPending}, nil
		}
		return Override{}, errkit.New(errkit.ErrMissingInput, err, "read dependency_graph.override.yaml")
	}
	var y overrideYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Override{}, errkit.New(errkit.ErrMalformed, err, "parse dependency_graph.override.yaml")
	}
	o := Override{
		Version:             y.Version,
		Status:              y.Status,
		ApprovedBy:          y.ApprovedBy,
		ApprovedAt:          y.ApprovedAt,
		AddEdges:            y.AddEdges,
		RemoveEdges:         y.RemoveEdges,
		AddExternalProjects: y.AddExternalProjects,
		Metadata:            y.Metadata,
	}
	if o.Version == 0 {
		o.Version = 1
	}
	if o.Status != StatusPending && o.Status != StatusApproved {
		return Override{}, errkit.New(errkit.ErrContractViolation, nil,
			"override status must be pending or approved")
	}
	return o, nil
}

// CompileOverrideYAML reads the YAML source at yamlPath and writes the
// canonical dependency_graph.override.json at jsonPath, so operators
// edit the friendlier YAML form while every downstream reader
// (LoadOverride, Gate) still sees the canonicalized JSON contract.
func CompileOverrideYAML(yamlPath, jsonPath string) (Override, error) {
	o, err := LoadOverrideYAML(yamlPath)
	if err != nil {
		return Override{}, err
	}
	data, err := fsatomic.Canonicalize(o, "dependency_graph.override.json")
	if err != nil {
		return Override{}, err
	}
	if err := fsatomic.WriteFile(jsonPath, data); err != nil {
		return Override{}, err
	}
	return o, nil
}
