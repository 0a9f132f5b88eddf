// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/module"
	"github.com/fwflash-cli/platform"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Show the module information of firmware files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadPlatforms(GetPlatforms())
		if err != nil {
			return err
		}
		return Inspect(cmd.OutOrStdout(), args, table)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// Inspect prints what the prefix and suffix of each file say
func Inspect(w io.Writer, files []string, platforms *platform.Table) error {
	mods, err := loadModules(files)
	if err != nil {
		return err
	}
	for _, m := range mods {
		if err := describeModule(w, m, platforms); err != nil {
			return err
		}
	}
	return nil
}

func describeModule(w io.Writer, m *module.Descriptor, platforms *platform.Table) error {
	p := m.Prefix

	crc := color.GreenString("ok")
	if !m.CRCValid {
		crc = color.RedString("mismatch")
	}
	var deps []string
	for _, d := range p.Dependencies() {
		deps = append(deps, d.String())
	}
	if len(deps) == 0 {
		deps = []string{"none"}
	}
	var flags []string
	for _, f := range []struct {
		flag module.Flags
		name string
	}{
		{module.FlagDropModuleInfo, "drop module info"},
		{module.FlagCompressed, "compressed"},
		{module.FlagCombined, "combined"},
	} {
		if p.Flags.Has(f.flag) {
			flags = append(flags, f.name)
		}
	}

	mode := "unknown"
	if fm, err := flash.GetFileFlashMode(m, platforms); err == nil {
		mode = fm.String()
	}

	data := pterm.TableData{
		{"File", m.Filename},
		{"Size", fmt.Sprint(len(m.Data))},
		{"Function", fmt.Sprintf("%s (index %d)", p.Function, p.Index)},
		{"Version", fmt.Sprint(p.Version)},
		{"Platform", platformName(platforms, int(p.PlatformID))},
		{"Address", fmt.Sprintf("%s - 0x%x", p.StartAddy(), p.EndAddress)},
		{"Flash mode", mode},
		{"Flags", strings.Join(flags, ", ")},
		{"Dependencies", strings.Join(deps, ", ")},
		{"Product", fmt.Sprintf("%d version %d", m.Suffix.ProductID, m.Suffix.ProductVersion)},
		{"SHA-256", hex.EncodeToString(m.Suffix.SHA256[:])},
		{"CRC", crc},
	}
	if p.Function == module.FunctionAsset {
		sum := m.PayloadHash()
		data = append(data,
			[]string{"Asset", m.Suffix.AssetName},
			[]string{"Asset hash", hex.EncodeToString(sum[:])},
		)
	}

	table, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n\n", table)
	return err
}
