package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/depgraph"
)

func depgraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depgraph",
		Short: "Compile and gate the dependency graph override (spec §4.4)",
	}
	cmd.AddCommand(depgraphCompileCmd())
	cmd.AddCommand(depgraphGateCmd())
	return cmd
}

func depgraphCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile dependency_graph.override.yaml into its canonical JSON form",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			yamlPath := filepath.Join(app.Paths.ConfigDir(), "dependency_graph.override.yaml")
			jsonPath := filepath.Join(app.Paths.ConfigDir(), "dependency_graph.override.json")
			o, err := depgraph.CompileOverrideYAML(yamlPath, jsonPath)
			if err != nil {
				return err
			}
			fmt.Printf("compiled override (status=%s, %d add_edges, %d remove_edges)\n",
				o.Status, len(o.AddEdges), len(o.RemoveEdges))
			return nil
		},
	}
	return cmd
}

func depgraphGateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Refuse unless the effective dependency graph override is approved",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			graphPath := filepath.Join(app.Paths.ConfigDir(), "dependency_graph.json")
			overridePath := filepath.Join(app.Paths.ConfigDir(), "dependency_graph.override.json")

			base, err := depgraph.LoadGraph(graphPath)
			if err != nil {
				return err
			}
			override, err := depgraph.LoadOverride(overridePath)
			if err != nil {
				return err
			}
			if gateErr := depgraph.Gate(override, force); gateErr != nil {
				if err := depgraph.WriteBlocker(app.Paths.LaneABlockers(), override, nowUTC()); err != nil {
					return err
				}
				return gateErr
			}
			effective := depgraph.Effective(base, override)
			fmt.Printf("gate passed: %d edges, %d external projects\n", len(effective.Edges), len(effective.ExternalProjects))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "explicit operator override of an unapproved graph")
	return cmd
}
