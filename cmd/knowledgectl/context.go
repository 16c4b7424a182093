package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/config"
	"github.com/deliverygov/knowledgectl/internal/registry"
)

func nowUTC() time.Time { return time.Now().UTC() }

// appContext bundles the resolved paths, loaded project config, and
// repo/team registry every subcommand needs, mirroring the teacher's
// single project-root resolution done once per invocation.
type appContext struct {
	Paths    *config.Paths
	Config   *config.ProjectConfig
	Registry *registry.Registry
}

func loadContext(cmd *cobra.Command) (*appContext, error) {
	opsRoot, _ := cmd.Flags().GetString("ops-root")
	if opsRoot == "" {
		opsRoot = os.Getenv("AI_PROJECT_ROOT")
	}
	if opsRoot == "" {
		return nil, fmt.Errorf("--ops-root or $AI_PROJECT_ROOT must name an absolute path ending in /ops")
	}
	paths, err := config.NewPaths(opsRoot)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(paths.ConfigDir())
	if err != nil {
		return nil, err
	}
	return &appContext{Paths: paths, Config: cfg, Registry: reg}, nil
}

// repoAbsPath resolves a registered repo's working tree: repo.Path
// joined onto the configured repos_root unless it is already absolute.
func (a *appContext) repoAbsPath(r registry.Repo) string {
	if filepath.IsAbs(r.Path) {
		return r.Path
	}
	return filepath.Join(a.Config.ReposRoot, r.Path)
}

func (a *appContext) requireRepo(repoID string) (registry.Repo, error) {
	r, ok := a.Registry.Find(repoID)
	if !ok {
		return registry.Repo{}, fmt.Errorf("repo %q is not registered", repoID)
	}
	return r, nil
}

// activeRepoIDs returns every active repo_id, sorted (spec §5
// "aggregated deterministically by repo_id sort").
func (a *appContext) activeRepoIDs() []string {
	active := a.Registry.Active()
	ids := make([]string, 0, len(active))
	for _, r := range active {
		ids = append(ids, r.RepoID)
	}
	return ids
}
