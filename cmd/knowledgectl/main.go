// Command knowledgectl is the two-lane knowledge-delivery governance
// engine's CLI surface (spec §4): build a RepoIndex, run a Knowledge
// Scan, synthesize the system Integration view, check freshness, bump
// the Knowledge Version, propose/approve Sufficiency, log and
// summarize Merge Events, build a Knowledge Bundle, and run the Lane A
// Governance Gate over an intake.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var buildVersion = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	rootCmd := &cobra.Command{
		Use:     "knowledgectl",
		Short:   "Two-lane knowledge-delivery governance engine",
		Version: buildVersion,
		Long: `knowledgectl builds and governs the shared Knowledge the system
and human Lane B consume, and the Merge Events and Sufficiency records
that gate Lane A delivery.

  index        Build a RepoIndex/RepoFingerprints pair
  scan         Run a per-repo Knowledge Scan
  synth        Synthesize the system Integration view and Gaps
  freshness    Check and guard scope staleness
  version      Manage the Knowledge Version
  sufficiency  Propose and approve Sufficiency Records
  events       Log and summarize Merge Events
  bundle       Build a Knowledge Bundle
  governance   Run the Lane A Governance Gate
  depgraph     Compile and gate the dependency graph override`,
	}

	rootCmd.PersistentFlags().String("ops-root", "", "absolute path ending in /ops (defaults to $AI_PROJECT_ROOT)")

	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(synthCmd())
	rootCmd.AddCommand(freshnessCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(sufficiencyCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(bundleCmd())
	rootCmd.AddCommand(governanceCmd())
	rootCmd.AddCommand(depgraphCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
