// Package config loads the project configuration surface named in
// spec §6: <ops>/config/{PROJECT.json,REPOS.json,TEAMS.json,AGENTS.json}.
// Layout and defaulting follow the teacher's .sdp/config.yml loader:
// defaults merged with an optional file, every path-like field validated
// to stay within the project root.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FreshnessConfig holds the soft/hard-stale grace thresholds (spec §9
// Open Question #1; defaults documented in SPEC_FULL.md).
type FreshnessConfig struct {
	GraceWindow    time.Duration `json:"grace_window"`
	MaxMergeEvents int           `json:"max_merge_events"`
}

// TimeoutsConfig holds the external-call timeouts from spec §5.
type TimeoutsConfig struct {
	GitMs              int64 `json:"git_ms"`
	ExternalKnowledgeMs int64 `json:"external_knowledge_ms"`
	GhMs               int64 `json:"gh_ms"`
}

// WorkerPoolConfig bounds stage concurrency (spec §4.1).
type WorkerPoolConfig struct {
	Concurrency int `json:"concurrency"`
}

// LockConfig configures the orchestrate lock's stale-takeover window
// (spec §5: 30 minutes).
type LockConfig struct {
	StaleMs int64 `json:"stale_ms"`
}

// ProjectConfig is <ops>/config/PROJECT.json.
type ProjectConfig struct {
	Version     int              `json:"version"`
	ReposRoot   string           `json:"repos_root"`
	Freshness   FreshnessConfig  `json:"freshness"`
	Timeouts    TimeoutsConfig   `json:"timeouts"`
	WorkerPool  WorkerPoolConfig `json:"worker_pool"`
	Lock        LockConfig       `json:"lock"`
}

// DefaultProjectConfig returns a config with the documented defaults.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: 1,
		Freshness: FreshnessConfig{
			GraceWindow:    2 * time.Hour,
			MaxMergeEvents: 3,
		},
		Timeouts: TimeoutsConfig{
			GitMs:               30_000,
			ExternalKnowledgeMs: 20_000,
			GhMs:                20_000,
		},
		WorkerPool: WorkerPoolConfig{Concurrency: 4},
		Lock:       LockConfig{StaleMs: 30 * 60 * 1000},
	}
}

// Paths resolves the on-disk layout from spec §6 relative to an ops
// root. opsRoot must be an absolute path ending in "/ops" (spec §6 env).
type Paths struct {
	OpsRoot       string
	KnowledgeRoot string
}

// NewPaths validates opsRoot and derives the knowledge root
// (<opsRoot>/../knowledge, sibling to ops, matching the teacher's
// project-root-relative convention).
func NewPaths(opsRoot string) (*Paths, error) {
	abs, err := filepath.Abs(opsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve ops root: %w", err)
	}
	if filepath.Base(abs) != "ops" {
		return nil, fmt.Errorf("AI_PROJECT_ROOT must end in /ops, got %q", abs)
	}
	return &Paths{
		OpsRoot:       abs,
		KnowledgeRoot: filepath.Join(filepath.Dir(abs), "knowledge"),
	}, nil
}

func (p *Paths) ConfigDir() string       { return filepath.Join(p.OpsRoot, "config") }
func (p *Paths) LaneARoot() string       { return filepath.Join(p.OpsRoot, "ai", "lane_a") }
func (p *Paths) LaneBRoot() string       { return filepath.Join(p.OpsRoot, "ai", "lane_b") }
func (p *Paths) LaneALocks() string      { return filepath.Join(p.LaneARoot(), "locks") }
func (p *Paths) LaneABlockers() string   { return filepath.Join(p.LaneARoot(), "blockers") }
func (p *Paths) LaneARefreshHints() string { return filepath.Join(p.LaneARoot(), "refresh_hints") }
func (p *Paths) LaneADecisionPackets() string {
	return filepath.Join(p.LaneARoot(), "decision_packets")
}
func (p *Paths) LaneASufficiency() string { return filepath.Join(p.LaneARoot(), "sufficiency") }
func (p *Paths) LaneAIntakeApprovalsProcessed() string {
	return filepath.Join(p.LaneARoot(), "intake_approvals", "processed")
}
func (p *Paths) LaneAEventsSegments() string {
	return filepath.Join(p.LaneARoot(), "events", "segments")
}
func (p *Paths) LaneAEventsCheckpoints() string {
	return filepath.Join(p.LaneARoot(), "events", "checkpoints")
}
func (p *Paths) LaneAEventsSummary() string {
	return filepath.Join(p.LaneARoot(), "events", "summary")
}
func (p *Paths) LaneABundles() string { return filepath.Join(p.LaneARoot(), "bundles") }
func (p *Paths) LaneALedger() string  { return filepath.Join(p.LaneARoot(), "ledger.jsonl") }
func (p *Paths) LaneAKnowledgeVersion() string {
	return filepath.Join(p.LaneARoot(), "knowledge_version.json")
}
func (p *Paths) LaneAStaleness() string { return filepath.Join(p.LaneARoot(), "staleness.json") }

func (p *Paths) LaneBInbox() string   { return filepath.Join(p.LaneBRoot(), "inbox") }
func (p *Paths) LaneBTriage() string  { return filepath.Join(p.LaneBRoot(), "triage") }
func (p *Paths) LaneBWork() string    { return filepath.Join(p.LaneBRoot(), "work") }
func (p *Paths) LaneBLedger() string  { return filepath.Join(p.LaneBRoot(), "ledger.jsonl") }

func (p *Paths) KnowledgeSSOTSystem() string {
	return filepath.Join(p.KnowledgeRoot, "ssot", "system")
}
func (p *Paths) KnowledgeSSOTRepo(repoID string) string {
	return filepath.Join(p.KnowledgeRoot, "ssot", "repos", repoID)
}
func (p *Paths) KnowledgeViewsSystem() string {
	return filepath.Join(p.KnowledgeRoot, "views", "system")
}
func (p *Paths) KnowledgeViewsTeams() string {
	return filepath.Join(p.KnowledgeRoot, "views", "teams")
}
func (p *Paths) KnowledgeViewsRepo(repoID string) string {
	return filepath.Join(p.KnowledgeRoot, "views", "repos", repoID)
}
func (p *Paths) KnowledgeIntegrationMap() string {
	return filepath.Join(p.KnowledgeRoot, "views", "integration_map.json")
}
func (p *Paths) KnowledgeEvidenceSystem() string {
	return filepath.Join(p.KnowledgeRoot, "evidence", "system")
}
func (p *Paths) KnowledgeEvidenceRepo(repoID string) string {
	return filepath.Join(p.KnowledgeRoot, "evidence", "repos", repoID)
}
func (p *Paths) KnowledgeIndexRepo(repoID string) string {
	return filepath.Join(p.KnowledgeRoot, "evidence", "index", "repos", repoID)
}
func (p *Paths) KnowledgeDecisions() string { return filepath.Join(p.KnowledgeRoot, "decisions") }
func (p *Paths) KnowledgeEventsSummary() string {
	return filepath.Join(p.KnowledgeRoot, "events_summary.json")
}
func (p *Paths) KnowledgeQA() string { return filepath.Join(p.KnowledgeRoot, "qa") }
func (p *Paths) KnowledgeVersionJSON() string {
	return filepath.Join(p.KnowledgeRoot, "VERSION.json")
}
func (p *Paths) KnowledgeVersionMD() string {
	return filepath.Join(p.KnowledgeRoot, "VERSION.md")
}

// Load reads <ops>/config/PROJECT.json, merging onto defaults.
// reposRoot is validated to be an absolute path or resolved relative to
// opsRoot's parent; a config that resolves outside the project root is
// rejected (path-traversal safety, ported from the teacher's
// validatePathWithinRoot).
func Load(paths *Paths) (*ProjectConfig, error) {
	path := filepath.Join(paths.ConfigDir(), "PROJECT.json")
	cfg := DefaultProjectConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read project config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config: %w", err)
	}
	if cfg.ReposRoot != "" {
		root := filepath.Dir(paths.OpsRoot)
		resolved := cfg.ReposRoot
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(root, resolved)
		}
		if err := validatePathWithinRoot(root, resolved); err != nil {
			return nil, fmt.Errorf("repos_root: %w", err)
		}
		cfg.ReposRoot = resolved
	}
	return cfg, nil
}

func validatePathWithinRoot(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return fmt.Errorf("relative path: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %q outside project root %q", path, root)
	}
	return nil
}
