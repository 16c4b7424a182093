package pathrules

import "testing"

func TestClassifyManifestsAndLockfiles(t *testing.T) {
	cases := map[string]Category{
		"go.mod":               CategoryManifest,
		"go.sum":               CategoryLockfile,
		"package.json":         CategoryManifest,
		"requirements-dev.txt": CategoryLockfile,
		"Dockerfile.prod":      CategoryInfra,
	}
	for path, want := range cases {
		got, ok := Classify(path)
		if !ok || got != want {
			t.Errorf("Classify(%q) = (%q, %v), want (%q, true)", path, got, ok, want)
		}
	}
}

func TestClassifyNestedInfraPaths(t *testing.T) {
	cases := []string{
		"helm/charts/api/Chart.yaml",
		"k8s/deployment.yaml",
		"kubernetes/deploy/svc.yaml",
	}
	for _, path := range cases {
		if !IsFingerprintWorthy(path) {
			t.Errorf("expected %q to be fingerprint-worthy", path)
		}
	}
}

func TestClassifyMigrationsAnyDepth(t *testing.T) {
	cases := []string{
		"migrations/0001_init.sql",
		"services/billing/migrations/0002_add_col.sql",
		"a/b/c/migrations/d/e.sql",
	}
	for _, path := range cases {
		cat, ok := Classify(path)
		if !ok || cat != CategoryMigration {
			t.Errorf("Classify(%q) = (%q, %v), want migration", path, cat, ok)
		}
	}
}

func TestClassifyCIWorkflows(t *testing.T) {
	if !IsFingerprintWorthy(".github/workflows/ci.yml") {
		t.Errorf("expected CI workflow to be fingerprint-worthy")
	}
}

func TestClassifyContractFiles(t *testing.T) {
	cases := []string{"api/openapi.yaml", "schema/service.proto", "gql/schema.graphql"}
	for _, path := range cases {
		cat, ok := Classify(path)
		if !ok || cat != CategoryContract {
			t.Errorf("Classify(%q) = (%q, %v), want contract", path, cat, ok)
		}
	}
}

func TestClassifyUnrelatedPathIsNotFingerprintWorthy(t *testing.T) {
	if IsFingerprintWorthy("src/main.go") {
		t.Errorf("expected src/main.go to not be fingerprint-worthy")
	}
}
