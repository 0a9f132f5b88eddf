// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwflash-cli/device/dummy"
	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/platform"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// deviceCmd represents the device command
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage simulated devices",
	Long:  `Commands for creating and examining the simulated devices that fwflash can flash.`,
}

// deviceInitCmd represents the device init command
var deviceInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a simulated device",
	Long: `Create a simulated device in the directory given by --device, replacing any
device already there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := deviceDirs(GetDevice())
		if len(dirs) == 0 {
			return errNoDevice
		}
		table, err := loadPlatforms(GetPlatforms())
		if err != nil {
			return err
		}

		platformID, _ := cmd.Flags().GetInt("platform")
		if _, ok := table.Lookup(platformID); !ok {
			return fmt.Errorf("Unknown platform ID: %d", platformID)
		}
		version, _ := cmd.Flags().GetString("version")
		dfu, _ := cmd.Flags().GetBool("dfu")
		protected, _ := cmd.Flags().GetBool("protected")
		overridden, _ := cmd.Flags().GetBool("overridden")
		noProtection, _ := cmd.Flags().GetBool("no-protection-support")
		failUpdates, _ := cmd.Flags().GetInt("fail-updates")

		for _, dir := range dirs {
			d, err := dummy.Init(dir, dummy.State{
				PlatformID:             platformID,
				Version:                version,
				DFU:                    dfu,
				Protection:             flash.ProtectionState{Protected: protected, Overridden: overridden},
				ProtectionNotSupported: noProtection,
				FailNextUpdates:        failUpdates,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s in %s\n", platformName(table, platformID), d.ID(), dir)
		}
		return nil
	},
}

// deviceShowCmd represents the device show command
var deviceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the state of a simulated device",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadPlatforms(GetPlatforms())
		if err != nil {
			return err
		}
		devices, err := loadDevices(GetDevice())
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		for _, d := range devices {
			if err := showDevice(cmd.OutOrStdout(), d, table, asJSON); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	deviceInitCmd.Flags().Int("platform", 0, "Platform ID")
	deviceInitCmd.Flags().String("version", "6.1.1", "Device OS version")
	deviceInitCmd.Flags().Bool("dfu", false, "Start in DFU mode")
	deviceInitCmd.Flags().Bool("protected", false, "Enable device protection")
	deviceInitCmd.Flags().Bool("overridden", false, "Override device protection")
	deviceInitCmd.Flags().Bool("no-protection-support", false, "Don't answer device protection queries")
	deviceInitCmd.Flags().Int("fail-updates", 0, "Fail this many normal-mode updates")
	deviceInitCmd.MarkFlagRequired("platform")

	deviceShowCmd.Flags().Bool("json", false, "Print the raw device state")

	deviceCmd.AddCommand(deviceInitCmd)
	deviceCmd.AddCommand(deviceShowCmd)
	rootCmd.AddCommand(deviceCmd)
}

func showDevice(w io.Writer, d *dummy.Device, platforms *platform.Table, asJSON bool) error {
	s := d.State()
	if asJSON {
		output, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", output)
		return nil
	}

	mode := flash.ModeNormal
	if s.DFU {
		mode = flash.ModeDfu
	}
	fmt.Fprintf(w, "Device %s\n", s.ID)
	fmt.Fprintf(w, "  Platform:   %s\n", platformName(platforms, s.PlatformID))
	fmt.Fprintf(w, "  Device OS:  %s\n", s.Version)
	fmt.Fprintf(w, "  Mode:       %s\n", mode)
	fmt.Fprintf(w, "  Protection: protected=%t overridden=%t\n", s.Protection.Protected, s.Protection.Overridden)

	if len(s.Images) > 0 {
		data := pterm.TableData{{"Name", "Mode", "Address", "Size", "Function", "Version"}}
		for _, img := range s.Images {
			data = append(data, []string{
				img.Name, img.Mode, fmt.Sprintf("0x%08x", img.Address), fmt.Sprint(img.Size), img.Function, fmt.Sprint(img.Version),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s\n", table)
	}
	if len(s.Assets) > 0 {
		fmt.Fprintln(w, "\nAssets:")
		for _, a := range s.Assets {
			fmt.Fprintf(w, "  %s (%d bytes) %s\n", a.Name, a.Size, a.Hash)
		}
	}
	fmt.Fprintln(w)
	return nil
}
