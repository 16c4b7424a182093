// Package depgraph computes the effective dependency graph (base plus
// human override) and gates Knowledge Scan on its approval status
// (spec §4.4).
package depgraph

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

// OverrideStatus is the required status on an override file.
type OverrideStatus string

const (
	StatusPending  OverrideStatus = "pending"
	StatusApproved OverrideStatus = "approved"
)

// Edge is one dependency edge between two repo_ids (or a repo_id and
// an external_project id) (spec.md §9, SPEC_FULL.md §4.4a).
type Edge struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Type         string   `json:"type"`
	Contract     string   `json:"contract,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

func (e Edge) key() string { return e.From + "\x00" + e.To + "\x00" + e.Type }

// ExternalProject is a pinned dependency outside the repo registry.
type ExternalProject struct {
	ID      string `json:"id"`
	Version string `json:"version,omitempty"`
}

// Graph is the base or effective dependency graph document.
type Graph struct {
	Version          int               `json:"version"`
	Nodes            []string          `json:"nodes"`
	Edges            []Edge            `json:"edges"`
	ExternalProjects []ExternalProject `json:"external_projects,omitempty"`
}

// Override is dependency_graph.override.json: human-authored additions
// and removals, plus the approval status gating any scan.
type Override struct {
	Version             int               `json:"version"`
	Status              OverrideStatus    `json:"status"`
	ApprovedBy          string            `json:"approved_by,omitempty"`
	ApprovedAt          string            `json:"approved_at,omitempty"`
	AddEdges            []Edge            `json:"add_edges,omitempty"`
	RemoveEdges         []Edge            `json:"remove_edges,omitempty"`
	AddExternalProjects []ExternalProject `json:"add_external_projects,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// LoadGraph reads a base dependency_graph.json. A missing file yields
// an empty graph (no dependencies declared yet).
func LoadGraph(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{Version: 1}, nil
		}
		return Graph{}, errkit.New(errkit.ErrMissingInput, err, "read dependency_graph.json")
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errkit.New(errkit.ErrMalformed, err, "parse dependency_graph.json")
	}
	return g, nil
}

// LoadOverride reads dependency_graph.override.json. A missing file
// yields a pending override with no edges (nothing approved yet, so
// the gate refuses by default).
func LoadOverride(path string) (Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Override{Version: 1, Status: StatusPending}, nil
		}
		return Override{}, errkit.New(errkit.ErrMissingInput, err, "read dependency_graph.override.json")
	}
	var o Override
	if err := json.Unmarshal(data, &o); err != nil {
		return Override{}, errkit.New(errkit.ErrMalformed, err, "parse dependency_graph.override.json")
	}
	if o.Status != StatusPending && o.Status != StatusApproved {
		return Override{}, errkit.New(errkit.ErrContractViolation, nil,
			"override status must be pending or approved")
	}
	return o, nil
}

// Effective merges base and override deterministically: override
// add_edges are added, remove_edges are subtracted, external projects
// are unioned, and nodes/edges are sorted for reproducible output
// (spec §4.4 "deterministically sorted").
func Effective(base Graph, override Override) Graph {
	edgeSet := make(map[string]Edge)
	for _, e := range base.Edges {
		edgeSet[e.key()] = e
	}
	for _, e := range override.AddEdges {
		edgeSet[e.key()] = e
	}
	for _, e := range override.RemoveEdges {
		delete(edgeSet, e.key())
	}

	nodeSet := make(map[string]struct{})
	for _, n := range base.Nodes {
		nodeSet[n] = struct{}{}
	}

	projects := make(map[string]ExternalProject)
	for _, p := range base.ExternalProjects {
		projects[p.ID] = p
	}
	for _, p := range override.AddExternalProjects {
		projects[p.ID] = p
	}

	edges := make([]Edge, 0, len(edgeSet))
	for _, e := range edgeSet {
		edges = append(edges, e)
		nodeSet[e.From] = struct{}{}
		nodeSet[e.To] = struct{}{}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Type < edges[j].Type
	})

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	extList := make([]ExternalProject, 0, len(projects))
	for _, p := range projects {
		extList = append(extList, p)
	}
	sort.Slice(extList, func(i, j int) bool { return extList[i].ID < extList[j].ID })

	return Graph{Version: 1, Nodes: nodes, Edges: edges, ExternalProjects: extList}
}

// Gate refuses a scan unless the override is approved or the caller
// passed force (spec §4.4 "Gate"). force is meant for an explicit
// operator flag, never a default.
func Gate(override Override, force bool) error {
	if override.Status == StatusApproved || force {
		if force && override.Status != StatusApproved {
			slog.Warn("dependency graph gate forced past an unapproved override", "status", override.Status)
		}
		return nil
	}
	slog.Warn("dependency graph gate refused", "status", override.Status)
	return errkit.New(errkit.ErrDepsNotApproved, nil,
		"dependency graph override is not approved; pass force or approve the override")
}
