package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/eventlog"
	"github.com/deliverygov/knowledgectl/internal/freshness"
	"github.com/deliverygov/knowledgectl/internal/gitx"
	"github.com/deliverygov/knowledgectl/internal/repoindex"
)

// loadStaleness reads staleness.json; a missing file means freshness
// has never been checked, which the guard treats as fresh (nothing on
// record blocks it) rather than failing closed on a file-not-found.
func loadStaleness(path string) (freshness.Staleness, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return freshness.Staleness{Version: 1, Scope: "system"}, nil
		}
		return freshness.Staleness{}, err
	}
	var s freshness.Staleness
	if err := json.Unmarshal(data, &s); err != nil {
		return freshness.Staleness{}, err
	}
	return s, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func freshnessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freshness",
		Short: "Check and guard scope staleness (spec §4.8)",
	}
	cmd.AddCommand(freshnessCheckCmd())
	cmd.AddCommand(freshnessGuardCmd())
	return cmd
}

func freshnessCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Classify every active repo and aggregate system staleness",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			now := nowUTC()
			events, _, err := eventlog.ReadAll(app.Paths.LaneAEventsSegments())
			if err != nil {
				return err
			}

			var results []freshness.RepoResult
			for _, repo := range app.Registry.Active() {
				indexDir := app.Paths.KnowledgeIndexRepo(repo.RepoID)
				idx, err := repoindex.LoadIndex(filepath.Join(indexDir, "repo_index.json"))
				if err != nil {
					return err
				}
				fp, err := repoindex.LoadFingerprints(filepath.Join(indexDir, "repo_fingerprints.json"))
				if err != nil {
					return err
				}

				var scannedAt time.Time
				if idx.ScannedAt != "" {
					scannedAt, _ = time.Parse(time.RFC3339, idx.ScannedAt)
				}

				adapter := gitx.New(app.repoAbsPath(repo))
				currentHead, err := adapter.RevParseHead(context.Background())
				if err != nil {
					return err
				}

				mismatches, err := repoindex.FindMismatches(context.Background(), adapter, fp)
				if err != nil {
					return err
				}

				var since []time.Time
				for _, ev := range events {
					if ev.RepoID != repo.RepoID {
						continue
					}
					ts, err := time.Parse(time.RFC3339, ev.Timestamp)
					if err != nil || !ts.After(scannedAt) {
						continue
					}
					since = append(since, ts)
				}

				results = append(results, freshness.CheckRepo(freshness.RepoCheckInput{
					RepoID:                 repo.RepoID,
					CurrentHeadSHA:         currentHead,
					LastScanCommitSHA:      idx.CommitSHA,
					ScannedAt:              scannedAt,
					MergeEventTimestamps:   since,
					MismatchedFingerprints: mismatches,
				}, app.Config.Freshness, now))
			}

			system := freshness.AggregateSystem(results, now)
			if err := freshness.WriteStaleness(app.Paths.LaneAStaleness(), system); err != nil {
				return err
			}
			for _, r := range results {
				if r.Stale {
					repoScope := freshness.ForRepo(r, now)
					if err := freshness.WriteRefreshHint(app.Paths.LaneARefreshHints(), repoScope.Scope, repoScope.Reasons, now); err != nil {
						return err
					}
				}
			}
			fmt.Printf("system stale=%v hard_stale=%v (%d/%d repos stale)\n",
				system.Stale, system.HardStale, len(system.StaleRepos), len(results))
			return nil
		},
	}
	return cmd
}

func freshnessGuardCmd() *cobra.Command {
	var scope, trigger, by, reason string
	var force bool
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Refuse or allow an operation against the current staleness.json",
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
			if scope != "system" {
				staleness = freshness.ForRepo(freshness.RepoResult{
					RepoID:    strings.TrimPrefix(scope, "repo:"),
					Stale:     containsString(system.StaleRepos, strings.TrimPrefix(scope, "repo:")),
					HardStale: system.HardStale && containsString(system.StaleRepos, strings.TrimPrefix(scope, "repo:")),
					Reasons:   system.Reasons,
				}, nowUTC())
			}
			outcome, err := freshness.Guard(app.Paths.LaneADecisionPackets(), staleness, trigger,
				freshness.Override{Force: force, By: by, Reason: reason}, nowUTC())
			if err != nil {
				return err
			}
			if outcome != nil && outcome.LedgerLine != "" {
				ledger, err := os.OpenFile(app.Paths.LaneALedger(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				_, err = ledger.WriteString(outcome.LedgerLine + "\n")
				if closeErr := ledger.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				fmt.Println(outcome.LedgerLine)
			} else {
				fmt.Println("guard passed: scope is fresh")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope being guarded (system or repo:<id>)")
	cmd.Flags().StringVar(&trigger, "trigger", "", "operation attempting to proceed")
	cmd.Flags().BoolVar(&force, "force", false, "explicit operator override")
	cmd.Flags().StringVar(&by, "by", "", "operator name for the override")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the override")
	return cmd
}
