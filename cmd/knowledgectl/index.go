package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/docvalidate"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/registry"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
	"github.com/deliverygov/knowledgectl/internal/workerpool"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and inspect a RepoIndex",
	}
	cmd.AddCommand(indexBuildCmd())
	cmd.AddCommand(indexAllCmd())
	return cmd
}

// buildIndexForRepo runs the RepoIndex/RepoFingerprints pipeline for
// one repo: build, validate, write (spec §4.3).
func buildIndexForRepo(app *appContext, repo registry.Repo) error {
	adapter := gitx.New(app.repoAbsPath(repo))
	idx, fp, err := repoindex.Build(context.Background(), adapter, repo.RepoID, repo.ActiveBranch, app.activeRepoIDs(), nowUTC())
	if err != nil {
		return err
	}
	idxJSON, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	if err := docvalidate.Validate(docvalidate.KindRepoIndex, idxJSON); err != nil {
		return err
	}
	indexDir := app.Paths.KnowledgeIndexRepo(repo.RepoID)
	indexPath := filepath.Join(indexDir, "repo_index.json")
	fingerprintsPath := filepath.Join(indexDir, "repo_fingerprints.json")
	if err := repoindex.Write(indexPath, fingerprintsPath, idx, fp); err != nil {
		return err
	}
	fmt.Printf("wrote RepoIndex for %s at %s (%d fingerprinted paths)\n", repo.RepoID, idx.CommitSHA, len(idx.Fingerprints))
	return nil
}

func indexBuildCmd() *cobra.Command {
	var repoID string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the RepoIndex/RepoFingerprints pair for one repo (spec §4.3)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repo, err := app.requireRepo(repoID)
			if err != nil {
				return err
			}
			return buildIndexForRepo(app, repo)
		},
	}
	cmd.Flags().StringVar(&repoID, "repo", "", "repo_id to index (required)")
	cmd.MarkFlagRequired("repo")
	return cmd
}

// indexAllCmd fans RepoIndex builds out across every active repo,
// bounded by the worker pool cap; one repo's failure is reported but
// does not stop the others from completing (spec §4.1, §4.6).
func indexAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Build the RepoIndex for every active registered repo in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repos := app.Registry.Active()
			errs := workerpool.Run(context.Background(), repos, app.Config.WorkerPool.Concurrency,
				func(_ context.Context, repo registry.Repo, _ int) error {
					return buildIndexForRepo(app, repo)
				})
			failed := 0
			for i, err := range errs {
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "index %s: %v\n", repos[i].RepoID, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d/%d repos failed to index", failed, len(repos))
			}
			return nil
		},
	}
	return cmd
}
