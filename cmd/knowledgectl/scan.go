package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/docvalidate"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/knowledgescan"
	"github.com/deliverygov/knowledgectl/internal/registry"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
	"github.com/deliverygov/knowledgectl/internal/workerpool"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run and inspect a per-repo Knowledge Scan",
	}
	cmd.AddCommand(scanRunCmd())
	cmd.AddCommand(scanAllCmd())
	return cmd
}

// runScanForRepo runs the Knowledge Scan pipeline for one repo: load
// its RepoIndex/RepoFingerprints, scan, validate, write (spec §4.6).
func runScanForRepo(app *appContext, repo registry.Repo) error {
	indexDir := app.Paths.KnowledgeIndexRepo(repo.RepoID)
	idx, err := repoindex.LoadIndex(filepath.Join(indexDir, "repo_index.json"))
	if err != nil {
		return err
	}
	fp, err := repoindex.LoadFingerprints(filepath.Join(indexDir, "repo_fingerprints.json"))
	if err != nil {
		return err
	}
	adapter := gitx.New(app.repoAbsPath(repo))
	scan, refs, err := knowledgescan.Run(context.Background(), adapter, idx, fp, nowUTC())
	if err != nil {
		return err
	}
	scanJSON, err := json.Marshal(scan)
	if err != nil {
		return err
	}
	if err := docvalidate.Validate(docvalidate.KindKnowledgeScan, scanJSON); err != nil {
		return err
	}
	if err := knowledgescan.Write(app.Paths.KnowledgeEvidenceRepo(repo.RepoID), scan, refs); err != nil {
		return err
	}
	fmt.Printf("scan %s: %d facts, %d unknowns, %d/%d files indexed\n",
		repo.RepoID, len(scan.Facts), len(scan.Unknowns), scan.Coverage.FilesIndexed, scan.Coverage.FilesSeen)
	return nil
}

func scanRunCmd() *cobra.Command {
	var repoID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Knowledge Scan for one repo (spec §4.6)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repo, err := app.requireRepo(repoID)
			if err != nil {
				return err
			}
			return runScanForRepo(app, repo)
		},
	}
	cmd.Flags().StringVar(&repoID, "repo", "", "repo_id to scan (required)")
	cmd.MarkFlagRequired("repo")
	return cmd
}

// scanAllCmd fans Knowledge Scans out across every active repo, bounded
// by the worker pool cap; one repo's failure is reported but does not
// interrupt the others (spec §4.1, §4.6 "multiple repos may be scanned
// in parallel bounded by the pool cap... failures of one repo are
// reported but do not interrupt others").
func scanAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Scan every active registered repo in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repos := app.Registry.Active()
			errs := workerpool.Run(context.Background(), repos, app.Config.WorkerPool.Concurrency,
				func(_ context.Context, repo registry.Repo, _ int) error {
					return runScanForRepo(app, repo)
				})
			failed := 0
			for i, err := range errs {
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "scan %s: %v\n", repos[i].RepoID, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d/%d repos failed to scan", failed, len(repos))
			}
			return nil
		},
	}
	return cmd
}
