// Package docvalidate JSON-Schema-validates the four document shapes
// that cross a trust boundary before a later stage relies on them
// (spec §3): RepoIndex, KnowledgeScan, MergeEvent, IntakeApproval.
// Schemas are embedded (not loaded from disk) since they describe a
// fixed contract, not project configuration.
package docvalidate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

// Kind names one of the four validated document shapes.
type Kind string

const (
	KindRepoIndex      Kind = "repo_index"
	KindKnowledgeScan  Kind = "knowledge_scan"
	KindMergeEvent     Kind = "merge_event"
	KindIntakeApproval Kind = "intake_approval"
)

var schemaSource = map[Kind]string{
	KindRepoIndex:      repoIndexSchema,
	KindKnowledgeScan:  knowledgeScanSchema,
	KindMergeEvent:     mergeEventSchema,
	KindIntakeApproval: intakeApprovalSchema,
}

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error
)

func compileAll() (map[Kind]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for kind, src := range schemaSource {
			url := string(kind) + ".json"
			if err := compiler.AddResource(url, jsonReader(src)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", url, err)
				return
			}
		}
		out := make(map[Kind]*jsonschema.Schema, len(schemaSource))
		for kind := range schemaSource {
			url := string(kind) + ".json"
			schema, err := compiler.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", url, err)
				return
			}
			out[kind] = schema
		}
		compiled = out
	})
	return compiled, compileErr
}

// Validate checks data (raw JSON bytes) against the schema for kind,
// failing closed with errkit.ErrContractViolation on any mismatch.
func Validate(kind Kind, data []byte) error {
	schemas, err := compileAll()
	if err != nil {
		return errkit.New(errkit.ErrInternal, err, "compile embedded schemas")
	}
	schema, ok := schemas[kind]
	if !ok {
		return errkit.New(errkit.ErrInternal, nil, fmt.Sprintf("unknown document kind %q", kind))
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errkit.New(errkit.ErrMalformed, err, fmt.Sprintf("%s is not valid JSON", kind))
	}
	if err := schema.Validate(doc); err != nil {
		return errkit.New(errkit.ErrContractViolation, err, fmt.Sprintf("%s failed schema validation", kind))
	}
	return nil
}
