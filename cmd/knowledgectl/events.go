package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/eventlog"
	"github.com/deliverygov/knowledgectl/internal/gitx"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Log and summarize the Merge Event Log",
	}
	cmd.AddCommand(eventsLogCmd())
	cmd.AddCommand(eventsSummarizeCmd())
	return cmd
}

func eventsLogCmd() *cobra.Command {
	var repoID, mergeSHA, baseBranch, affectedCSV string
	var prNumber int
	var dryRun, derivePaths bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Append one merge event to the segment for the current second (spec §4.11)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repo, err := app.requireRepo(repoID)
			if err != nil {
				return err
			}

			var affected []string
			if affectedCSV != "" {
				affected = strings.Split(affectedCSV, ",")
			}
			if derivePaths {
				adapter := gitx.New(app.repoAbsPath(repo))
				paths, source := eventlog.DeriveAffectedPaths(context.Background(), nil, adapter, "", repo.RepoID, prNumber, mergeSHA)
				if len(paths) > 0 {
					affected = paths
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "affected_paths derived via %s\n", source)
			}

			in := eventlog.LogMergeEventInput{
				RepoID: repo.RepoID, PRNumber: prNumber, MergeCommitSHA: mergeSHA,
				BaseBranch: baseBranch, AffectedPaths: affected, Timestamp: nowUTC(),
			}
			ev, err := eventlog.LogMergeEvent(app.Paths.LaneAEventsSegments(), in, nowUTC(), dryRun)
			if err != nil {
				return err
			}
			verb := "logged"
			if dryRun {
				verb = "would log"
			}
			fmt.Printf("%s %s for %s PR #%d\n", verb, ev.ID, ev.RepoID, ev.PRNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&repoID, "repo", "", "repo_id the merge landed on (required)")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "pull request number (required)")
	cmd.Flags().StringVar(&mergeSHA, "merge-sha", "", "merge commit SHA (required)")
	cmd.Flags().StringVar(&baseBranch, "base-branch", "", "base branch the PR merged into")
	cmd.Flags().StringVar(&affectedCSV, "affected-paths", "", "comma-separated affected paths")
	cmd.Flags().BoolVar(&derivePaths, "derive-paths", false, "derive affected_paths from the git diff instead of --affected-paths")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print without appending")
	cmd.MarkFlagRequired("repo")
	cmd.MarkFlagRequired("pr")
	cmd.MarkFlagRequired("merge-sha")
	return cmd
}

func eventsSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Roll the event log into one latest-event-per-repo summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			events, warnings, err := eventlog.ReadAll(app.Paths.LaneAEventsSegments())
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s:%d: %s\n", w.Segment, w.Line, w.Reason)
			}
			summary := eventlog.Summarize(events, nowUTC())
			laneAPath, knowledgeRootPath := eventlog.DefaultSummaryPaths(app.Paths.LaneARoot(), app.Paths.KnowledgeRoot)
			if err := eventlog.WriteSummary(laneAPath, knowledgeRootPath, summary); err != nil {
				return err
			}
			fmt.Printf("summarized %d events across %d repos (%d warnings)\n",
				len(events), len(summary.MergeEvents), len(warnings))
			return nil
		},
	}
	return cmd
}
