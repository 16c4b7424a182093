// Package errkit provides the closed set of error kinds this core raises
// (spec §7) wrapped in a single serializable error type, following the
// same shape as a typed-error-with-recovery-hint package: a closed code
// enum, a class derived from the code, and JSON (de)serialization so
// errors survive a trip through a CLI boundary or a ledger line.
package errkit

import "fmt"

// ErrorCode is the closed set of error kinds from spec §7.
type ErrorCode string

const (
	ErrMissingInput               ErrorCode = "missing_input"
	ErrContractViolation          ErrorCode = "contract_violation"
	ErrEvidenceMissing            ErrorCode = "evidence_missing"
	ErrIndexOutOfDate             ErrorCode = "index_out_of_date"
	ErrKnowledgeStale             ErrorCode = "knowledge_stale"
	ErrKnowledgeVersionMismatch   ErrorCode = "knowledge_version_mismatch"
	ErrDepsNotApproved            ErrorCode = "deps_not_approved"
	ErrLaneAGovernanceViolation   ErrorCode = "lane_a_governance_violation"
	ErrExternalDependencyMissing  ErrorCode = "external_dependency_bundle_missing"
	ErrGitFailed                  ErrorCode = "git_failed"
	ErrGhFailed                   ErrorCode = "gh_failed"
	ErrTimeout                    ErrorCode = "timeout"
	ErrMalformed                  ErrorCode = "malformed"
	ErrInternal                   ErrorCode = "internal"
)

var validCodes = map[ErrorCode]bool{
	ErrMissingInput:              true,
	ErrContractViolation:         true,
	ErrEvidenceMissing:           true,
	ErrIndexOutOfDate:            true,
	ErrKnowledgeStale:            true,
	ErrKnowledgeVersionMismatch:  true,
	ErrDepsNotApproved:           true,
	ErrLaneAGovernanceViolation:  true,
	ErrExternalDependencyMissing: true,
	ErrGitFailed:                 true,
	ErrGhFailed:                  true,
	ErrTimeout:                   true,
	ErrMalformed:                 true,
	ErrInternal:                  true,
}

// IsValid reports whether the code is one of the closed set.
func (c ErrorCode) IsValid() bool {
	return validCodes[c]
}

// Class groups codes the way the teacher groups ENV/CONTRACT/etc.
type Class string

const (
	ClassEnv        Class = "ENV"
	ClassContract   Class = "CONTRACT"
	ClassGovernance Class = "GOVERNANCE"
	ClassRuntime    Class = "RUNTIME"
)

// Class derives the error's class from its code.
func (c ErrorCode) Class() Class {
	switch c {
	case ErrGitFailed, ErrGhFailed, ErrTimeout:
		return ClassEnv
	case ErrContractViolation, ErrEvidenceMissing, ErrIndexOutOfDate, ErrMalformed, ErrMissingInput:
		return ClassContract
	case ErrKnowledgeStale, ErrKnowledgeVersionMismatch, ErrDepsNotApproved,
		ErrLaneAGovernanceViolation, ErrExternalDependencyMissing:
		return ClassGovernance
	default:
		return ClassRuntime
	}
}

var recoveryHints = map[ErrorCode]string{
	ErrMissingInput:              "run the prior pipeline stage that produces this artifact",
	ErrContractViolation:         "inspect the document against its invariants and regenerate it",
	ErrEvidenceMissing:           "re-run the indexer so fingerprints match the current ref",
	ErrIndexOutOfDate:            "re-run the repo indexer before scanning",
	ErrKnowledgeStale:            "refresh knowledge for this scope, or pass an explicit override",
	ErrKnowledgeVersionMismatch:  "re-triage the intake against the current knowledge version",
	ErrDepsNotApproved:           "approve the dependency graph override before scanning",
	ErrLaneAGovernanceViolation:  "resolve the failing governance check before triaging",
	ErrExternalDependencyMissing: "run --knowledge-index/--knowledge-scan in the target project",
	ErrGitFailed:                 "inspect stderr from the underlying git invocation",
	ErrGhFailed:                  "inspect stderr from the underlying gh invocation",
	ErrTimeout:                   "retry with a longer timeout or investigate the stalled subprocess",
	ErrMalformed:                 "validate the producer emitting this document",
	ErrInternal:                  "",
}

// CoreError is the error type every internal/* package returns for a
// condition named in spec §7.
type CoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]string
}

// New creates a CoreError. message defaults to a generic description of
// the code when empty.
func New(code ErrorCode, cause error, message string) *CoreError {
	if message == "" {
		message = string(code)
	}
	return &CoreError{Code: code, Message: message, Cause: cause}
}

// WithContext attaches a key/value pair and returns the same error for
// chaining, mirroring the teacher's fluent Context builder.
func (e *CoreError) WithContext(key, value string) *CoreError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Class returns the error's class.
func (e *CoreError) Class() Class {
	return e.Code.Class()
}

// RecoveryHint returns the documented recovery hint for the code.
func (e *CoreError) RecoveryHint() string {
	return recoveryHints[e.Code]
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CoreError with the same code, enabling
// errors.Is(err, errkit.New(errkit.ErrKnowledgeStale, nil, "")).
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
