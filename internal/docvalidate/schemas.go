package docvalidate

import "strings"

func jsonReader(s string) *strings.Reader { return strings.NewReader(s) }

const repoIndexSchema = `{
  "type": "object",
  "required": ["version", "repo_id", "ref", "commit_sha", "scanned_at", "fingerprints"],
  "properties": {
    "version": {"type": "integer"},
    "repo_id": {"type": "string", "pattern": "^[a-z0-9_-]+$"},
    "ref": {"type": "string", "minLength": 1},
    "commit_sha": {"type": "string", "minLength": 7},
    "scanned_at": {"type": "string", "minLength": 1},
    "entrypoints": {"type": "array", "items": {"type": "string"}},
    "migrations_schema": {"type": "array", "items": {"type": "string"}},
    "fingerprints": {"type": "object"}
  }
}`

const knowledgeScanSchema = `{
  "type": "object",
  "required": ["version", "repo_id", "scanned_at", "scan_version", "facts", "unknowns", "coverage"],
  "properties": {
    "version": {"type": "integer"},
    "repo_id": {"type": "string", "pattern": "^[a-z0-9_-]+$"},
    "scanned_at": {"type": "string", "minLength": 1},
    "scan_version": {"type": "integer"},
    "facts": {"type": "array"},
    "unknowns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text", "evidence_id"],
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "evidence_id": {"type": "string", "minLength": 1}
        }
      }
    },
    "coverage": {
      "type": "object",
      "required": ["files_seen", "files_indexed"],
      "properties": {
        "files_seen": {"type": "integer", "minimum": 0},
        "files_indexed": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

const mergeEventSchema = `{
  "type": "object",
  "required": ["version", "id", "type", "repo_id", "pr_number", "merge_commit_sha", "base_branch", "timestamp"],
  "properties": {
    "version": {"type": "integer"},
    "id": {"type": "string", "pattern": "^EV-"},
    "type": {"type": "string", "const": "merge"},
    "repo_id": {"type": "string", "minLength": 1},
    "pr_number": {"type": "integer", "exclusiveMinimum": 0},
    "merge_commit_sha": {"type": "string", "minLength": 7},
    "base_branch": {"type": "string", "minLength": 1},
    "affected_paths": {"type": "array", "items": {"type": "string"}},
    "timestamp": {"type": "string", "minLength": 1}
  }
}`

const intakeApprovalSchema = `{
  "type": "object",
  "required": ["id", "scope", "knowledge_version", "approved_by", "approved_at"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "scope": {"type": "string", "pattern": "^(system|repo:[a-z0-9_-]+)$"},
    "knowledge_version": {"type": "string", "pattern": "^v[0-9]+(\\.[0-9]+(\\.[0-9]+)?)?$"},
    "sufficiency_override": {"type": "boolean"},
    "approved_by": {"type": "string", "minLength": 1},
    "approved_at": {"type": "string", "minLength": 1}
  }
}`
