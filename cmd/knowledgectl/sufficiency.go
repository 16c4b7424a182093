package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/sufficiency"
)

func sufficiencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sufficiency",
		Short: "Propose, approve, and show Sufficiency Records",
	}
	cmd.AddCommand(sufficiencyProposeCmd())
	cmd.AddCommand(sufficiencyApproveCmd())
	cmd.AddCommand(sufficiencyShowCmd())
	return cmd
}

func sufficiencyProposeCmd() *cobra.Command {
	var scope, knowledgeVersion, status string
	var reasons []string
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose an insufficient or partial sufficiency judgment",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			prior, err := sufficiency.Load(app.Paths.LaneASufficiency(), scope, knowledgeVersion)
			if err != nil {
				return err
			}
			next, err := sufficiency.Propose(scope, knowledgeVersion, sufficiency.Status(status), reasons, nowUTC())
			if err != nil {
				return err
			}
			if err := sufficiency.Transition(prior, next); err != nil {
				return err
			}
			if err := sufficiency.Save(app.Paths.LaneASufficiency(), next); err != nil {
				return err
			}
			fmt.Printf("sufficiency %s@%s -> %s\n", scope, knowledgeVersion, next.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope (system or repo:<id>)")
	cmd.Flags().StringVar(&knowledgeVersion, "knowledge-version", "", "knowledge_version this judgment applies to (required)")
	cmd.Flags().StringVar(&status, "status", "", "insufficient or partial (required)")
	cmd.Flags().StringSliceVar(&reasons, "reason", nil, "reason for the judgment, repeatable")
	cmd.MarkFlagRequired("knowledge-version")
	cmd.MarkFlagRequired("status")
	return cmd
}

func sufficiencyApproveCmd() *cobra.Command {
	var scope, knowledgeVersion string
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve a scope as sufficient at a knowledge_version",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			prior, err := sufficiency.Load(app.Paths.LaneASufficiency(), scope, knowledgeVersion)
			if err != nil {
				return err
			}
			next := sufficiency.Approve(scope, knowledgeVersion, nowUTC())
			if err := sufficiency.Transition(prior, next); err != nil {
				return err
			}
			if err := sufficiency.Save(app.Paths.LaneASufficiency(), next); err != nil {
				return err
			}
			fmt.Printf("sufficiency %s@%s -> sufficient\n", scope, knowledgeVersion)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope (system or repo:<id>)")
	cmd.Flags().StringVar(&knowledgeVersion, "knowledge-version", "", "knowledge_version being approved (required)")
	cmd.MarkFlagRequired("knowledge-version")
	return cmd
}

func sufficiencyShowCmd() *cobra.Command {
	var scope, knowledgeVersion string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the sufficiency record for a (scope, knowledge_version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			rec, err := sufficiency.Load(app.Paths.LaneASufficiency(), scope, knowledgeVersion)
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Println("no sufficiency record on file")
				return nil
			}
			fmt.Printf("%s@%s: %s (captured %s)\n", rec.Scope, rec.KnowledgeVersion, rec.Status, rec.CapturedAt)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope (system or repo:<id>)")
	cmd.Flags().StringVar(&knowledgeVersion, "knowledge-version", "", "knowledge_version to look up (required)")
	cmd.MarkFlagRequired("knowledge-version")
	return cmd
}
