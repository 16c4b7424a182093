package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/docvalidate"
	"github.com/deliverygov/knowledgectl/internal/freshness"
	"github.com/deliverygov/knowledgectl/internal/governance"
	"github.com/deliverygov/knowledgectl/internal/sufficiency"
	"github.com/deliverygov/knowledgectl/internal/version"
)

func governanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "governance",
		Short: "Run the Lane A Governance Gate over an intake file",
	}
	cmd.AddCommand(governanceCheckCmd())
	return cmd
}

func governanceCheckCmd() *cobra.Command {
	var intakeFile string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check one intake file's header against all five gate checks (spec §4.12)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(intakeFile)
			if err != nil {
				return err
			}
			header := governance.ParseIntakeHeader(string(raw))

			kv, err := version.Load(app.Paths.LaneAKnowledgeVersion())
			if err != nil {
				return err
			}
			staleness, err := loadStaleness(app.Paths.LaneAStaleness())
			if err != nil {
				return err
			}
			if header.Scope != "system" {
				repoID := strings.TrimPrefix(header.Scope, "repo:")
				staleness = freshness.ForRepo(freshness.RepoResult{
					RepoID:    repoID,
					Stale:     containsString(staleness.StaleRepos, repoID),
					HardStale: staleness.HardStale && containsString(staleness.StaleRepos, repoID),
					Reasons:   staleness.Reasons,
				}, nowUTC())
			}

			systemSufficiency, err := sufficiency.Load(app.Paths.LaneASufficiency(), "system", header.KnowledgeVersion)
			if err != nil {
				return err
			}
			var repoSufficiency *sufficiency.Record
			if header.Scope != "system" {
				repoSufficiency, err = sufficiency.Load(app.Paths.LaneASufficiency(), header.Scope, header.KnowledgeVersion)
				if err != nil {
					return err
				}
			}

			in := governance.Input{
				Header:            header,
				LoadIA:            func(id string) (*governance.IntakeApproval, error) { return loadIntakeApproval(app, id) },
				CurrentVersion:    kv.Current,
				Staleness:         staleness,
				SystemSufficiency: systemSufficiency,
				RepoSufficiency:   repoSufficiency,
				RepoIDs:           app.activeRepoIDs(),
			}

			items, checkErr := governance.Check(in)
			if checkErr != nil {
				failure, writeErr := governance.WriteFailure(app.Paths.LaneBTriage(), checkErr, header.Scope, nowUTC())
				if writeErr != nil {
					return writeErr
				}
				line := governance.LedgerLine(failure)
				ledger, err := os.OpenFile(app.Paths.LaneBLedger(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				_, err = ledger.WriteString(line + "\n")
				if closeErr := ledger.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				fmt.Println(line)
				return checkErr
			}
			for _, item := range items {
				fmt.Printf("triaged repo:%s\n", item.RepoID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&intakeFile, "intake-file", "", "path to the intake file to check (required)")
	cmd.MarkFlagRequired("intake-file")
	return cmd
}

// loadIntakeApproval reads <ops>/ai/lane_a/intake_approvals/processed/<id>.json
// and validates it against the IntakeApproval schema before trusting it.
func loadIntakeApproval(app *appContext, id string) (*governance.IntakeApproval, error) {
	path := filepath.Join(app.Paths.LaneAIntakeApprovalsProcessed(), id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := docvalidate.Validate(docvalidate.KindIntakeApproval, data); err != nil {
		return nil, err
	}
	var ia governance.IntakeApproval
	if err := json.Unmarshal(data, &ia); err != nil {
		return nil, err
	}
	return &ia, nil
}
