// Package registry loads the active-repo list from <ops>/config/REPOS.json
// and <ops>/config/TEAMS.json (spec §2 Repo Registry, §3 Repo).
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/deliverygov/knowledgectl/internal/errkit"
)

var repoIDPattern = regexp.MustCompile(`^[a-z0-9_\-]+$`)

// Status is the lifecycle state of a registered repo.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Repo is one entry in the registry (spec §3).
type Repo struct {
	RepoID       string   `json:"repo_id"`
	Path         string   `json:"path"`
	ActiveBranch string   `json:"active_branch"`
	TeamID       string   `json:"team_id"`
	Status       Status   `json:"status"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Validate checks the invariants from spec §3.
func (r Repo) Validate() error {
	if !repoIDPattern.MatchString(r.RepoID) {
		return errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("repo_id %q does not match ^[a-z0-9_\\-]+$", r.RepoID))
	}
	if r.Path == "" {
		return errkit.New(errkit.ErrContractViolation, nil, "repo path is empty").WithContext("repo_id", r.RepoID)
	}
	if r.Status != StatusActive && r.Status != StatusArchived {
		return errkit.New(errkit.ErrContractViolation, nil,
			fmt.Sprintf("repo %s: invalid status %q", r.RepoID, r.Status))
	}
	return nil
}

// Team is one entry in TEAMS.json.
type Team struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

// reposFile is the on-disk shape of REPOS.json.
type reposFile struct {
	Version int    `json:"version"`
	Repos   []Repo `json:"repos"`
}

type teamsFile struct {
	Version int    `json:"version"`
	Teams   []Team `json:"teams"`
}

// Registry holds the loaded repo and team lists.
type Registry struct {
	Repos []Repo
	Teams []Team
}

// Load reads REPOS.json and TEAMS.json from configDir. A missing
// REPOS.json yields an empty registry (nothing registered yet); a
// present-but-invalid file fails closed.
func Load(configDir string) (*Registry, error) {
	repos, err := loadRepos(filepath.Join(configDir, "REPOS.json"))
	if err != nil {
		return nil, err
	}
	teams, err := loadTeams(filepath.Join(configDir, "TEAMS.json"))
	if err != nil {
		return nil, err
	}
	return &Registry{Repos: repos, Teams: teams}, nil
}

func loadRepos(path string) ([]Repo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f reposFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errkit.New(errkit.ErrMalformed, err, "parse REPOS.json")
	}
	for _, r := range f.Repos {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Repos, nil
}

func loadTeams(path string) ([]Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f teamsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errkit.New(errkit.ErrMalformed, err, "parse TEAMS.json")
	}
	return f.Teams, nil
}

// Active returns only the active repos, sorted by repo_id for
// deterministic iteration (spec §5 "aggregated deterministically by
// repo_id sort").
func (r *Registry) Active() []Repo {
	var out []Repo
	for _, repo := range r.Repos {
		if repo.Status == StatusActive {
			out = append(out, repo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RepoID < out[j].RepoID })
	return out
}

// Find returns the repo with the given id, or (Repo{}, false).
func (r *Registry) Find(repoID string) (Repo, bool) {
	for _, repo := range r.Repos {
		if repo.RepoID == repoID {
			return repo, true
		}
	}
	return Repo{}, false
}
