package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deliverygov/knowledgectl/internal/version"
)

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show and bump the Knowledge Version pointer",
	}
	cmd.AddCommand(versionShowCmd())
	cmd.AddCommand(versionBumpCmd(version.BumpKindMajor, "bump-major"))
	cmd.AddCommand(versionBumpCmd(version.BumpKindMinor, "bump-minor"))
	cmd.AddCommand(versionBumpCmd(version.BumpKindPatch, "bump-patch"))
	cmd.AddCommand(versionSetCmd())
	return cmd
}

func versionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current knowledge_version",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			kv, err := version.Load(app.Paths.LaneAKnowledgeVersion())
			if err != nil {
				return err
			}
			fmt.Println(kv.Current)
			return nil
		},
	}
}

func versionBumpCmd(kind version.Bump, use string) *cobra.Command {
	var scope, reason string
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Apply a %s to knowledge_version", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			kv, err := version.Load(app.Paths.LaneAKnowledgeVersion())
			if err != nil {
				return err
			}
			kv, err = version.Apply(kv, kind, scope, reason, nowUTC())
			if err != nil {
				return err
			}
			return writeVersion(app, kv)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope this bump applies to")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in history (required)")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func versionSetCmd() *cobra.Command {
	var scope, reason, to string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set knowledge_version to an explicit value",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadContext(cmd)
			if err != nil {
				return err
			}
			kv, err := version.Load(app.Paths.LaneAKnowledgeVersion())
			if err != nil {
				return err
			}
			kv, err = version.ApplyExplicit(kv, to, scope, reason, nowUTC())
			if err != nil {
				return err
			}
			return writeVersion(app, kv)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "system", "scope this set applies to")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in history (required)")
	cmd.Flags().StringVar(&to, "to", "", "explicit version to set, e.g. v2.1 (required)")
	cmd.MarkFlagRequired("reason")
	cmd.MarkFlagRequired("to")
	return cmd
}

func writeVersion(app *appContext, kv version.KnowledgeVersion) error {
	versionPath, mirrorJSONPath, mirrorMDPath := version.DefaultPaths(app.Paths.LaneARoot())
	if err := version.Write(versionPath, mirrorJSONPath, mirrorMDPath, kv); err != nil {
		return err
	}
	fmt.Println(kv.Current)
	return nil
}
