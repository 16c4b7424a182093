package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/knowledgescan"
	"github.com/deliverygov/knowledgectl/internal/synth"
)

// loadScan reads one repo's scan.json. Synthesize itself reports any
// repo whose scan is altogether missing from the resulting map, so a
// read failure here is folded into that same "run scan first" path
// rather than surfaced separately.
func loadScan(path string) (*knowledgescan.Scan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s knowledgescan.Scan
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func synthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the system Integration view and Gaps",
	}
	cmd.AddCommand(synthRunCmd())
	return cmd
}

func synthRunCmd() *cobra.Command {
	var repoIDsCSV string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Roll per-repo scans into integration.json/gaps.json (spec §4.7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			repoIDs := app.activeRepoIDs()
			if repoIDsCSV != "" {
				repoIDs = strings.Split(repoIDsCSV, ",")
			}
			scans := make(map[string]*knowledgescan.Scan, len(repoIDs))
			for _, id := range repoIDs {
				scanPath := filepath.Join(app.Paths.KnowledgeEvidenceRepo(id), "scan.json")
				s, err := loadScan(scanPath)
				if err != nil {
					continue
				}
				scans[id] = s
			}
			integration, gaps, err := synth.Synthesize(repoIDs, scans, nowUTC())
			if err != nil {
				return err
			}
			if err := synth.Write(app.Paths.KnowledgeViewsSystem(), integration, gaps); err != nil {
				return err
			}
			fmt.Printf("synthesized integration view over %d repos, %d gaps\n", len(repoIDs), len(gaps.Gaps))
			return nil
		},
	}
	cmd.Flags().StringVar(&repoIDsCSV, "repos", "", "comma-separated repo_ids (defaults to every active registered repo)")
	return cmd
}
