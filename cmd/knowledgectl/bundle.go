package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/bundle"
	"github.com/deliverygov/knowledgectl/internal/freshness"
	"github.com/deliverygov/knowledgectl/internal/gitx"
)

func bundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Build a Knowledge Bundle for delivery",
	}
	cmd.AddCommand(bundleBuildCmd())
	return cmd
}

func bundleBuildCmd() *cobra.Command {
	var scope, trigger string
	var force bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a bundle for --scope (system or repo:<id>), spec §4.10",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			system, err := loadStaleness(app.Paths.LaneAStaleness())
			if err != nil {
				return err
			}
			staleness := system
			var adapter *gitx.Adapter
			var evidenceRefsPath, evidenceRepoID string
			if repoID, ok := strings.CutPrefix(scope, "repo:"); ok {
				repo, err := app.requireRepo(repoID)
				if err != nil {
					return err
				}
				adapter = gitx.New(app.repoAbsPath(repo))
				evidenceRepoID = repoID
				evidenceRefsPath = filepath.Join(app.Paths.KnowledgeEvidenceRepo(repoID), "evidence_refs.jsonl")
				staleness = freshness.ForRepo(freshness.RepoResult{
					RepoID:    repoID,
					Stale:     containsString(system.StaleRepos, repoID),
					HardStale: system.HardStale && containsString(system.StaleRepos, repoID),
					Reasons:   system.Reasons,
				}, nowUTC())
			}

			in := bundle.BuildInput{
				Scope:              scope,
				KnowledgeRoot:      app.Paths.KnowledgeRoot,
				BundlesRoot:        app.Paths.LaneABundles(),
				DecisionPacketsDir: app.Paths.LaneADecisionPackets(),
				Staleness:          staleness,
				StalenessOverride:  freshness.Override{Force: force, By: "cli", Reason: trigger},
				EvidenceRefsPath:   evidenceRefsPath,
				EvidenceRepoID:     evidenceRepoID,
				GitAdapter:         adapter,
			}
			result, err := bundle.Build(context.Background(), in, nowUTC())
			if err != nil {
				return err
			}
			fmt.Printf("bundle %s (%s) written to %s\n", result.BundleID, result.ManifestSHA256, result.OutDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope to bundle (system or repo:<id>)")
	cmd.Flags().StringVar(&trigger, "reason", "", "reason recorded if --force overrides a stale scope")
	cmd.Flags().BoolVar(&force, "force", false, "explicit operator override of a stale scope")
	return cmd
}
