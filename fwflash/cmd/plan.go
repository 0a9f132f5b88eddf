// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"

	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/platform"
	"github.com/spf13/cobra"
)

// PlanOpts encapsulates the parameters of a dry run
type PlanOpts struct {
	Files      []string
	PlatformID int
	Dfu        bool
	Factory    bool
	All        bool
	Platforms  *platform.Table
}

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan FILE...",
	Short: "Show how modules would be flashed",
	Long: `Show the steps that flashing the modules onto a platform would take, in
order, without touching a device.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadPlatforms(GetPlatforms())
		if err != nil {
			return err
		}
		platformID, _ := cmd.Flags().GetInt("platform")
		dfu, _ := cmd.Flags().GetBool("dfu")
		factory, _ := cmd.Flags().GetBool("factory")
		all, _ := cmd.Flags().GetBool("all")

		return Plan(cmd.OutOrStdout(), PlanOpts{
			Files:      args,
			PlatformID: platformID,
			Dfu:        dfu,
			Factory:    factory,
			All:        all,
			Platforms:  table,
		})
	},
}

func init() {
	planCmd.Flags().Int("platform", 0, "Platform ID")
	planCmd.Flags().Bool("dfu", false, "Plan for a device that is already in DFU mode")
	planCmd.Flags().Bool("factory", false, "Write the user part to the factory reset slot")
	planCmd.Flags().Bool("all", false, "Include modules that are normally left out, such as NCP firmware")
	planCmd.MarkFlagRequired("platform")

	rootCmd.AddCommand(planCmd)
}

// Plan prints the flash plan for the files
func Plan(w io.Writer, opts PlanOpts) error {
	if opts.Platforms == nil {
		opts.Platforms = platform.Default()
	}
	plat, ok := opts.Platforms.Lookup(opts.PlatformID)
	if !ok {
		return fmt.Errorf("Unknown platform ID: %d", opts.PlatformID)
	}

	mods, err := loadModules(opts.Files)
	if err != nil {
		return err
	}
	if err := flash.ValidateModulesForPlatform(mods, plat); err != nil {
		return err
	}
	filtered := flash.FilterModulesToFlash(mods, plat, opts.All)
	if skipped := len(mods) - len(filtered); skipped > 0 {
		fmt.Fprintf(w, "%d module(s) left out for %s\n", skipped, plat.DisplayName)
	}

	steps, err := flash.NewPlanner(opts.Platforms).CreateFlashSteps(filtered, flash.PlanOptions{
		IsInDfuMode: opts.Dfu,
		Factory:     opts.Factory,
		PlatformID:  plat.ID,
	})
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Fprintln(w, "nothing to flash")
		return nil
	}

	fmt.Fprintf(w, "Flashing %s (%d bytes)\n", plat.DisplayName, steps.TotalBytes())
	return renderPlan(w, steps)
}
