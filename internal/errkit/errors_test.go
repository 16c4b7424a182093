package errkit

import "testing"

func TestClassGrouping(t *testing.T) {
	cases := map[ErrorCode]Class{
		ErrGitFailed:                ClassEnv,
		ErrTimeout:                  ClassEnv,
		ErrContractViolation:        ClassContract,
		ErrIndexOutOfDate:           ClassContract,
		ErrKnowledgeStale:           ClassGovernance,
		ErrDepsNotApproved:          ClassGovernance,
		ErrLaneAGovernanceViolation: ClassGovernance,
		ErrInternal:                 ClassRuntime,
	}
	for code, want := range cases {
		if got := code.Class(); got != want {
			t.Errorf("%s.Class() = %s, want %s", code, got, want)
		}
	}
}

func TestWithContextChains(t *testing.T) {
	err := New(ErrGitFailed, nil, "ref resolution failed").
		WithContext("repo_id", "svc-a").
		WithContext("ref", "main")
	if err.Context["repo_id"] != "svc-a" || err.Context["ref"] != "main" {
		t.Fatalf("context not attached: %+v", err.Context)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	err := New(ErrKnowledgeVersionMismatch, nil, "header version does not match IA").
		WithContext("ia_id", "IA-1")
	if vErr := ValidateSerializationContract(err); vErr != nil {
		t.Fatalf("round-trip failed: %v", vErr)
	}
}

func TestToSerializableWrapsForeignErrors(t *testing.T) {
	se := ToSerializable(errPlain("boom"))
	if se.Code != string(ErrInternal) {
		t.Fatalf("expected internal code for foreign error, got %s", se.Code)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(ErrKnowledgeStale, nil, "stale a")
	b := New(ErrKnowledgeStale, nil, "stale b")
	c := New(ErrTimeout, nil, "timeout")
	if !a.Is(b) {
		t.Fatalf("expected same-code errors to match via Is")
	}
	if a.Is(c) {
		t.Fatalf("expected different-code errors not to match via Is")
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
